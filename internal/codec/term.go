package codec

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

// DecodeTerm decodes a full term document. A document must carry at least
// one course; an empty or missing <courses> block yields ErrNoCourses. A
// document holding more courses than a term admits, or a roster larger than
// its course capacity, is rejected with the matching capacity error.
func (c *Codec) DecodeTerm(document string) (*models.Term, error) {
	span, ok := tagtext.Find(document, "courses")
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNoCourses, "no courses found in term document")
	}
	code, _ := tagtext.Extract(document[:span.Start], "termcode")

	blocks, err := SplitCourses(document[span.ContentStart:span.ContentEnd])
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoCourses, "no courses found in term document")
	}
	if len(blocks) > models.MaxCoursesPerTerm {
		return nil, appErrors.Clone(appErrors.ErrTermFull, fmt.Sprintf("term document holds %d courses, the maximum number of courses per term is %d", len(blocks), models.MaxCoursesPerTerm))
	}

	term := models.NewTerm(code)
	for _, block := range blocks {
		course, err := c.DecodeBlock(block)
		if err != nil {
			return nil, err
		}
		if term.CourseIndex(course.Info().ID) >= 0 {
			return nil, appErrors.Malformed(nil, "duplicate course id %d", course.Info().ID)
		}
		if n := len(course.Info().Students); n > course.Capacity() {
			return nil, appErrors.Clone(appErrors.ErrCourseFull, fmt.Sprintf("course %d roster holds %d students, the maximum is %d", course.Info().ID, n, course.Capacity()))
		}
		term.Courses = append(term.Courses, course)
	}
	return term, nil
}

// EncodeTerm writes a term document.
func (c *Codec) EncodeTerm(term *models.Term) (string, error) {
	courses := make([]string, 0, len(term.Courses))
	for _, course := range term.Courses {
		encoded, err := c.EncodeCourse(course)
		if err != nil {
			return "", err
		}
		courses = append(courses, encoded)
	}

	var b strings.Builder
	b.WriteString(tagtext.Open("term"))
	b.WriteString(tagtext.Wrap("termcode", term.Code))
	b.WriteString(tagtext.Open("courses"))
	b.WriteString(strings.Join(courses, "\n"))
	b.WriteString(tagtext.Close("courses"))
	b.WriteString(tagtext.Close("term"))
	return b.String(), nil
}

// DecodeStudents decodes the <students> block of a student batch document.
// A document without a <students> block is an empty batch.
func (c *Codec) DecodeStudents(document string) ([]models.Student, error) {
	block, ok := tagtext.Extract(document, "students")
	if !ok {
		return nil, nil
	}
	return decodeRoster(block)
}

// EncodeStudents writes a student batch document.
func (c *Codec) EncodeStudents(students []models.Student) string {
	var b strings.Builder
	b.WriteString(tagtext.Open("students"))
	b.WriteByte('\n')
	for _, s := range students {
		b.WriteString(EncodeStudent(s))
		b.WriteByte('\n')
	}
	b.WriteString(tagtext.Close("students"))
	return b.String()
}
