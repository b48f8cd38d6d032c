package codec

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-course-api/internal/models"
	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

// DecodeAddress reads address fields from text. Missing fields stay empty.
func DecodeAddress(record string) models.Address {
	return models.Address{
		BuildingNumber: field(record, "buildingnumber"),
		Street:         field(record, "street"),
		City:           field(record, "city"),
		State:          field(record, "state"),
		ZipCode:        field(record, "zipcode"),
	}
}

// EncodeAddress writes an <address> record.
func EncodeAddress(a models.Address) string {
	var b strings.Builder
	b.WriteString(tagtext.Open("address"))
	b.WriteString(tagtext.Wrap("buildingnumber", a.BuildingNumber))
	b.WriteString(tagtext.Wrap("street", a.Street))
	b.WriteString(tagtext.Wrap("city", a.City))
	b.WriteString(tagtext.Wrap("state", a.State))
	b.WriteString(tagtext.Wrap("zipcode", a.ZipCode))
	b.WriteString(tagtext.Close("address"))
	return b.String()
}

// DecodeLocation reads location fields and the nested address from text.
func DecodeLocation(record string) models.Location {
	loc := models.Location{
		RoomNumber:   field(record, "roomnumber"),
		BuildingName: field(record, "buildingname"),
	}
	if address, ok := tagtext.Extract(record, "address"); ok {
		loc.Address = DecodeAddress(address)
	}
	return loc
}

// EncodeLocation writes a <location> record.
func EncodeLocation(l models.Location) string {
	var b strings.Builder
	b.WriteString(tagtext.Open("location"))
	b.WriteString(tagtext.Wrap("roomnumber", l.RoomNumber))
	b.WriteString(tagtext.Wrap("buildingname", l.BuildingName))
	b.WriteString(EncodeAddress(l.Address))
	b.WriteString(tagtext.Close("location"))
	return b.String()
}

// DecodeStudent reads one <student> record. The id and overall GPA are required.
func DecodeStudent(record string) (models.Student, error) {
	id, err := requireInt(record, "id")
	if err != nil {
		return models.Student{}, err
	}
	gpa, err := requireFloat(record, "overallgpa")
	if err != nil {
		return models.Student{}, err
	}
	student := models.Student{
		ID:           id,
		FirstName:    field(record, "firstname"),
		LastName:     field(record, "lastname"),
		OverallGPA:   gpa,
		EmailAddress: field(record, "emailaddress"),
	}
	if mailing, ok := tagtext.Extract(record, "mailingaddress"); ok {
		student.MailingAddress = DecodeAddress(mailing)
	}
	return student, nil
}

// EncodeStudent writes one <student> record on a single line.
func EncodeStudent(s models.Student) string {
	var b strings.Builder
	b.WriteString(tagtext.Open("student"))
	b.WriteString(tagtext.Wrap("id", strconv.Itoa(s.ID)))
	b.WriteString(tagtext.Wrap("firstname", s.FirstName))
	b.WriteString(tagtext.Wrap("lastname", s.LastName))
	b.WriteString(tagtext.Wrap("overallgpa", formatFloat(s.OverallGPA)))
	b.WriteString(tagtext.Wrap("emailaddress", s.EmailAddress))
	b.WriteString(tagtext.Wrap("mailingaddress", EncodeAddress(s.MailingAddress)))
	b.WriteString(tagtext.Close("student"))
	return b.String()
}

// DecodeGrade reads one <grade> entry.
func DecodeGrade(record string) (models.Grade, error) {
	id, err := requireInt(record, "studentid")
	if err != nil {
		return models.Grade{}, err
	}
	gpa, err := requireFloat(record, "gpa")
	if err != nil {
		return models.Grade{}, err
	}
	return models.Grade{StudentID: id, GPA: gpa}, nil
}

// EncodeGrade writes one <grade> entry.
func EncodeGrade(g models.Grade) string {
	return tagtext.Wrap("grade", tagtext.Wrap("studentid", strconv.Itoa(g.StudentID))+tagtext.Wrap("gpa", formatFloat(g.GPA)))
}
