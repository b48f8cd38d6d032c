package dto

import (
	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
)

// CourseResponse is the JSON view of a course of any variant.
type CourseResponse struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Variant           models.Variant   `json:"variant"`
	TermCode          string           `json:"termCode"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate"`
	MeetingDays       string           `json:"meetingDays"`
	MeetingTimes      string           `json:"meetingTimes"`
	Lifecycle         string           `json:"lifecycle"`
	Capacity          int              `json:"capacity"`
	Enrolled          int              `json:"enrolled"`
	Schedule          string           `json:"schedule"`
	URL               string           `json:"url,omitempty"`
	ClassroomLocation *models.Location `json:"classroomLocation,omitempty"`
	LabRoomLocation   *models.Location `json:"labRoomLocation,omitempty"`
	Students          []models.Student `json:"students"`
	Gradebook         models.Gradebook `json:"gradebook"`
}

// TermResponse is the JSON view of the loaded term.
type TermResponse struct {
	TermCode string           `json:"termCode"`
	Courses  []CourseResponse `json:"courses"`
}

// AverageGPAResponse reports a course gradebook average.
type AverageGPAResponse struct {
	CourseID   int     `json:"courseId"`
	AverageGPA float64 `json:"averageGpa"`
}

// LoadStudentsResponse reports the students enrolled from a batch document.
type LoadStudentsResponse struct {
	CourseID int              `json:"courseId"`
	Students []models.Student `json:"students"`
}

// NewCourseResponse renders course at lifecycle state lc.
func NewCourseResponse(course models.Course, dates codec.DateFormat, lc models.Lifecycle) CourseResponse {
	info := course.Info()
	students := info.Students
	if students == nil {
		students = []models.Student{}
	}
	resp := CourseResponse{
		ID:           info.ID,
		Name:         info.Name,
		Variant:      course.Variant(),
		TermCode:     info.TermCode,
		StartDate:    dates.Format(info.StartDate),
		EndDate:      dates.Format(info.EndDate),
		MeetingDays:  info.MeetingDays,
		MeetingTimes: info.MeetingTimes,
		Lifecycle:    lc.String(),
		Capacity:     course.Capacity(),
		Enrolled:     len(info.Students),
		Schedule:     course.Schedule(),
		Students:     students,
		Gradebook:    info.Gradebook,
	}
	switch c := course.(type) {
	case *models.OnlineCourse:
		resp.URL = c.URL
	case *models.HybridCourse:
		resp.URL = c.URL
		resp.ClassroomLocation = &c.ClassroomLocation
	case *models.LabCourse:
		resp.ClassroomLocation = &c.ClassroomLocation
		resp.LabRoomLocation = &c.LabRoomLocation
	}
	return resp
}

// NewTermResponse renders every course of term; lifecycle derives each state.
func NewTermResponse(term *models.Term, dates codec.DateFormat, lifecycle func(models.Course) models.Lifecycle) TermResponse {
	courses := make([]CourseResponse, 0, len(term.Courses))
	for _, course := range term.Courses {
		courses = append(courses, NewCourseResponse(course, dates, lifecycle(course)))
	}
	return TermResponse{TermCode: term.Code, Courses: courses}
}
