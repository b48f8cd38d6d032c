package dto

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
)

// Free-text fields carry the tagtext rule: term documents store them
// unescaped.

// StartTermRequest captures POST /term payload.
type StartTermRequest struct {
	TermCode string `json:"termCode" validate:"required,max=32,tagtext"`
}

// PathRequest names a document relative to the data directory.
type PathRequest struct {
	Path string `json:"path" validate:"required,max=255"`
}

// GPARequest captures PUT /courses/:id/students/:studentId/gpa payload.
type GPARequest struct {
	GPA *float64 `json:"gpa" validate:"required,gte=0,lte=4"`
}

// AddressRequest is a postal address.
type AddressRequest struct {
	BuildingNumber string `json:"buildingNumber" validate:"max=32,tagtext"`
	Street         string `json:"street" validate:"max=128,tagtext"`
	City           string `json:"city" validate:"max=64,tagtext"`
	State          string `json:"state" validate:"max=32,tagtext"`
	ZipCode        string `json:"zipCode" validate:"max=16,tagtext"`
}

// ToModel converts the request.
func (r AddressRequest) ToModel() models.Address {
	return models.Address{
		BuildingNumber: r.BuildingNumber,
		Street:         r.Street,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
	}
}

// LocationRequest is a room inside a building.
type LocationRequest struct {
	RoomNumber   string         `json:"roomNumber" validate:"required,max=32,tagtext"`
	BuildingName string         `json:"buildingName" validate:"required,max=128,tagtext"`
	Address      AddressRequest `json:"address"`
}

// ToModel converts the request.
func (r *LocationRequest) ToModel() models.Location {
	if r == nil {
		return models.Location{}
	}
	return models.Location{RoomNumber: r.RoomNumber, BuildingName: r.BuildingName, Address: r.Address.ToModel()}
}

// StudentRequest captures POST /courses/:id/students payload.
type StudentRequest struct {
	ID             int            `json:"id" validate:"required,gt=0"`
	FirstName      string         `json:"firstName" validate:"required,max=64,tagtext"`
	LastName       string         `json:"lastName" validate:"required,max=64,tagtext"`
	OverallGPA     float64        `json:"overallGpa" validate:"gte=0,lte=4"`
	EmailAddress   string         `json:"emailAddress" validate:"omitempty,email,tagtext"`
	MailingAddress AddressRequest `json:"mailingAddress"`
}

// ToModel converts the request.
func (r StudentRequest) ToModel() models.Student {
	return models.Student{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		OverallGPA:     r.OverallGPA,
		EmailAddress:   r.EmailAddress,
		MailingAddress: r.MailingAddress.ToModel(),
	}
}

// CreateCourseRequest captures POST /courses payload. Dates use the
// document date layout.
type CreateCourseRequest struct {
	ID                int              `json:"id" validate:"required,gt=0"`
	Name              string           `json:"name" validate:"required,max=128,tagtext"`
	Variant           models.Variant   `json:"variant" validate:"required,oneof=ONLINE HYBRID LAB"`
	StartDate         string           `json:"startDate" validate:"required"`
	EndDate           string           `json:"endDate" validate:"required"`
	MeetingDays       string           `json:"meetingDays" validate:"required,max=32,tagtext"`
	MeetingTimes      string           `json:"meetingTimes" validate:"required,max=64,tagtext"`
	TermCode          string           `json:"termCode" validate:"max=32,tagtext"`
	URL               string           `json:"url" validate:"required_if=Variant ONLINE,required_if=Variant HYBRID,omitempty,url,tagtext"`
	ClassroomLocation *LocationRequest `json:"classroomLocation"`
	LabRoomLocation   *LocationRequest `json:"labRoomLocation"`
}

// ToModel builds the course variant, parsing dates with dates.
func (r CreateCourseRequest) ToModel(dates codec.DateFormat) (models.Course, error) {
	start, err := dates.Parse(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", err)
	}
	end, err := dates.Parse(r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("endDate: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate %s is before startDate %s", r.EndDate, r.StartDate)
	}
	info := models.CourseInfo{
		ID:           r.ID,
		Name:         r.Name,
		StartDate:    start,
		EndDate:      end,
		MeetingDays:  r.MeetingDays,
		MeetingTimes: r.MeetingTimes,
		TermCode:     r.TermCode,
	}
	variant := models.Variant(strings.ToUpper(string(r.Variant)))
	if variant != models.VariantOnline && r.ClassroomLocation == nil {
		return nil, fmt.Errorf("classroomLocation is required for %s courses", variant)
	}
	if variant == models.VariantLab && r.LabRoomLocation == nil {
		return nil, fmt.Errorf("labRoomLocation is required for LAB courses")
	}
	switch variant {
	case models.VariantOnline:
		return &models.OnlineCourse{CourseInfo: info, URL: r.URL}, nil
	case models.VariantHybrid:
		return &models.HybridCourse{CourseInfo: info, URL: r.URL, ClassroomLocation: r.ClassroomLocation.ToModel()}, nil
	case models.VariantLab:
		return &models.LabCourse{CourseInfo: info, ClassroomLocation: r.ClassroomLocation.ToModel(), LabRoomLocation: r.LabRoomLocation.ToModel()}, nil
	default:
		return nil, fmt.Errorf("unknown course variant %q", r.Variant)
	}
}
