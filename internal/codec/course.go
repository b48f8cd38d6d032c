package codec

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

type variantCodec struct {
	variant models.Variant
	wrapper string
	build   func(info models.CourseInfo, body string) models.Course
}

var variantCodecs = []variantCodec{
	{
		variant: models.VariantOnline,
		wrapper: "onlinecourse",
		build: func(info models.CourseInfo, body string) models.Course {
			return &models.OnlineCourse{CourseInfo: info, URL: field(body, "url")}
		},
	},
	{
		variant: models.VariantHybrid,
		wrapper: "hybridcourse",
		build: func(info models.CourseInfo, body string) models.Course {
			return &models.HybridCourse{
				CourseInfo:        info,
				URL:               field(body, "url"),
				ClassroomLocation: locationField(body, "classroomlocation"),
			}
		},
	},
	{
		variant: models.VariantLab,
		wrapper: "labcourse",
		build: func(info models.CourseInfo, body string) models.Course {
			return &models.LabCourse{
				CourseInfo:        info,
				ClassroomLocation: locationField(body, "classroomlocation"),
				LabRoomLocation:   locationField(body, "labroomlocation"),
			}
		},
	},
}

func variantFor(v models.Variant) (variantCodec, bool) {
	for _, vc := range variantCodecs {
		if vc.variant == v {
			return vc, true
		}
	}
	return variantCodec{}, false
}

// Wrapper returns the wrapper tag name used for a course variant.
func Wrapper(v models.Variant) (string, bool) {
	vc, ok := variantFor(v)
	return vc.wrapper, ok
}

func locationField(body, tag string) models.Location {
	raw, ok := tagtext.Extract(body, tag)
	if !ok {
		return models.Location{}
	}
	return DecodeLocation(raw)
}

// DecodeCourse decodes a document holding exactly one course record.
func (c *Codec) DecodeCourse(document string) (models.Course, error) {
	blocks, err := SplitCourses(document)
	if err != nil {
		return nil, err
	}
	switch len(blocks) {
	case 0:
		return nil, appErrors.Malformed(nil, "no course record found")
	case 1:
		return c.DecodeBlock(blocks[0])
	default:
		return nil, appErrors.Malformed(nil, "expected one course record, found %d", len(blocks))
	}
}

// DecodeBlock decodes the body of one course record.
func (c *Codec) DecodeBlock(block Block) (models.Course, error) {
	vc, ok := variantFor(block.Variant)
	if !ok {
		return nil, appErrors.Malformed(nil, "unsupported course variant %q", block.Variant)
	}
	body := block.Body

	id, err := requireInt(body, "id")
	if err != nil {
		return nil, err
	}
	start, err := c.requireDate(body, "startdate")
	if err != nil {
		return nil, err
	}
	end, err := c.requireDate(body, "enddate")
	if err != nil {
		return nil, err
	}

	info := models.CourseInfo{
		ID:           id,
		TermCode:     field(body, "termcode"),
		Name:         field(body, "name"),
		StartDate:    start,
		EndDate:      end,
		MeetingDays:  field(body, "meetingdays"),
		MeetingTimes: field(body, "meetingtimes"),
	}

	if roster, ok := tagtext.Extract(body, "students"); ok {
		students, err := decodeRoster(roster)
		if err != nil {
			return nil, appErrors.Malformed(err, "course %d roster", id)
		}
		info.Students = students
	}

	if grades, ok := tagtext.Extract(body, "gradebook"); ok {
		for _, line := range tagtext.Lines(grades) {
			grade, err := DecodeGrade(line)
			if err != nil {
				return nil, appErrors.Malformed(err, "course %d gradebook", id)
			}
			info.Gradebook.Set(grade.StudentID, grade.GPA)
		}
	}

	return vc.build(info, body), nil
}

func decodeRoster(block string) ([]models.Student, error) {
	var students []models.Student
	seen := make(map[int]struct{})
	for _, line := range tagtext.Lines(block) {
		student, err := DecodeStudent(line)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[student.ID]; dup {
			return nil, appErrors.Malformed(nil, "duplicate student id %d", student.ID)
		}
		seen[student.ID] = struct{}{}
		students = append(students, student)
	}
	return students, nil
}

// EncodeCourse writes a course record, wrapper tags included.
func (c *Codec) EncodeCourse(course models.Course) (string, error) {
	vc, ok := variantFor(course.Variant())
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported course variant "+string(course.Variant()))
	}
	info := course.Info()

	var b strings.Builder
	b.WriteString(tagtext.Open(vc.wrapper))
	b.WriteByte('\n')

	b.WriteString(tagtext.Wrap("id", strconv.Itoa(info.ID)))
	b.WriteString(tagtext.Wrap("termcode", info.TermCode))
	b.WriteString(tagtext.Wrap("name", info.Name))
	b.WriteString(tagtext.Wrap("startdate", c.dates.Format(info.StartDate)))
	b.WriteString(tagtext.Wrap("enddate", c.dates.Format(info.EndDate)))
	b.WriteString(tagtext.Wrap("meetingdays", info.MeetingDays))
	b.WriteString(tagtext.Wrap("meetingtimes", info.MeetingTimes))
	b.WriteByte('\n')

	for _, f := range course.VariantFields() {
		if f.IsLocation {
			b.WriteString(tagtext.Wrap(f.Tag, EncodeLocation(f.Location)))
		} else {
			b.WriteString(tagtext.Wrap(f.Tag, f.Text))
		}
		b.WriteByte('\n')
	}

	b.WriteString(tagtext.Open("students"))
	b.WriteByte('\n')
	for _, s := range info.Students {
		b.WriteString(EncodeStudent(s))
		b.WriteByte('\n')
	}
	b.WriteString(tagtext.Close("students"))
	b.WriteByte('\n')

	b.WriteString(tagtext.Open("gradebook"))
	b.WriteByte('\n')
	for _, g := range info.Gradebook.Entries() {
		b.WriteString(EncodeGrade(g))
		b.WriteByte('\n')
	}
	b.WriteString(tagtext.Close("gradebook"))
	b.WriteByte('\n')

	b.WriteString(tagtext.Close(vc.wrapper))
	return b.String(), nil
}
