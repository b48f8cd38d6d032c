package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
)

func TestDecodeTermDocument(t *testing.T) {
	term, err := newTestCodec().DecodeTerm(onlineTermDocument)
	require.NoError(t, err)

	assert.Equal(t, "FL2019", term.Code)
	require.Len(t, term.Courses, 1)

	online, ok := term.Courses[0].(*models.OnlineCourse)
	require.True(t, ok)
	assert.Equal(t, 1, online.ID)
	assert.Equal(t, "https://x", online.URL)
	assert.Equal(t, []models.Student{sherlock(1, 4.0)}, online.Students)
	gpa, ok := online.Gradebook.Get(1)
	require.True(t, ok)
	assert.Equal(t, 3.5, gpa)
}

func TestEncodeTermIsByteStable(t *testing.T) {
	c := newTestCodec()
	term, err := c.DecodeTerm(onlineTermDocument)
	require.NoError(t, err)

	encoded, err := c.EncodeTerm(term)
	require.NoError(t, err)
	assert.Equal(t, onlineTermDocument, encoded)
}

func TestTermRoundTrip(t *testing.T) {
	c := newTestCodec()
	term := models.NewTerm("FL2019")
	term.Courses = []models.Course{
		&models.OnlineCourse{CourseInfo: withRoster(courseInfo(1)), URL: "https://x"},
		&models.HybridCourse{CourseInfo: courseInfo(2), URL: "https://y", ClassroomLocation: room2E()},
		&models.LabCourse{CourseInfo: withRoster(courseInfo(3)), ClassroomLocation: room2E(), LabRoomLocation: room2E()},
	}

	encoded, err := c.EncodeTerm(term)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "<term><termcode>FL2019</termcode><courses><onlinecourse>"))
	assert.True(t, strings.HasSuffix(encoded, "</labcourse></courses></term>"))

	decoded, err := c.DecodeTerm(encoded)
	require.NoError(t, err)
	assert.Equal(t, term, decoded)
}

func TestDecodeTermNoCourses(t *testing.T) {
	c := newTestCodec()
	for name, document := range map[string]string{
		"missing block": "<term><termcode>FL2019</termcode></term>",
		"empty block":   "<term><termcode>FL2019</termcode><courses>\n</courses></term>",
		"blank":         "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.DecodeTerm(document)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrNoCourses))
		})
	}
}

func TestDecodeTermDuplicateCourse(t *testing.T) {
	c := newTestCodec()
	course, err := c.EncodeCourse(&models.OnlineCourse{CourseInfo: courseInfo(1), URL: "https://x"})
	require.NoError(t, err)

	document := "<term><termcode>FL2019</termcode><courses>" + course + "\n" + course + "</courses></term>"
	_, err = c.DecodeTerm(document)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedDocument))
}

func TestDecodeTermPropagatesCourseErrors(t *testing.T) {
	document := "<term><termcode>FL2019</termcode><courses><onlinecourse>\n<id>1</id><startdate>bad</startdate><enddate>05/20/2019</enddate>\n</onlinecourse></courses></term>"
	_, err := newTestCodec().DecodeTerm(document)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedDocument))
}

func TestStudentBatch(t *testing.T) {
	c := newTestCodec()
	students := []models.Student{sherlock(1, 4.0), sherlock(2, 2.5)}

	document := c.EncodeStudents(students)
	assert.Equal(t, "<students>\n"+sherlockRecord+"\n", document[:len("<students>\n")+len(sherlockRecord)+1])

	decoded, err := c.DecodeStudents(document)
	require.NoError(t, err)
	assert.Equal(t, students, decoded)

	none, err := c.DecodeStudents("<batch></batch>")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDecodeTermCapacity(t *testing.T) {
	c := newTestCodec()

	crowded := models.NewTerm("FL2019")
	for id := 1; id <= models.MaxCoursesPerTerm+1; id++ {
		crowded.Courses = append(crowded.Courses, &models.OnlineCourse{CourseInfo: courseInfo(id), URL: "https://x"})
	}
	document, err := c.EncodeTerm(crowded)
	require.NoError(t, err)
	_, err = c.DecodeTerm(document)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTermFull))

	info := courseInfo(1)
	for id := 1; id <= models.LabCourseCapacity+1; id++ {
		info.Students = append(info.Students, sherlock(id, 3.0))
	}
	oversized := models.NewTerm("FL2019")
	oversized.Courses = []models.Course{&models.LabCourse{CourseInfo: info, ClassroomLocation: room2E(), LabRoomLocation: room2E()}}
	document, err = c.EncodeTerm(oversized)
	require.NoError(t, err)
	_, err = c.DecodeTerm(document)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCourseFull))

	info.Students = info.Students[:models.LabCourseCapacity]
	full := models.NewTerm("FL2019")
	full.Courses = []models.Course{&models.LabCourse{CourseInfo: info, ClassroomLocation: room2E(), LabRoomLocation: room2E()}}
	document, err = c.EncodeTerm(full)
	require.NoError(t, err)
	_, err = c.DecodeTerm(document)
	assert.NoError(t, err)
}

func TestSingleLineTermDocumentEncodesCanonically(t *testing.T) {
	c := newTestCodec()
	shared := "<id>1</id><termcode>FL2019</termcode><name>MATH101</name><startdate>04/20/2019</startdate><enddate>05/20/2019</enddate>" +
		"<meetingdays>T TH</meetingdays><meetingtimes>6:00PM - 6:30PM</meetingtimes>"
	singleLine := "<term><termcode>FL2019</termcode><courses><onlinecourse>" + shared + "<url>https://x</url></onlinecourse></courses></term>"

	term, err := c.DecodeTerm(singleLine)
	require.NoError(t, err)
	require.Len(t, term.Courses, 1)
	online, ok := term.Courses[0].(*models.OnlineCourse)
	require.True(t, ok)
	assert.Equal(t, 1, online.ID)
	assert.Equal(t, "https://x", online.URL)
	assert.Empty(t, online.Students)

	canonical := "<term><termcode>FL2019</termcode><courses><onlinecourse>\n" +
		shared + "\n" +
		"<url>https://x</url>\n" +
		"<students>\n</students>\n" +
		"<gradebook>\n</gradebook>\n" +
		"</onlinecourse></courses></term>"
	encoded, err := c.EncodeTerm(term)
	require.NoError(t, err)
	assert.Equal(t, canonical, encoded)

	again, err := c.DecodeTerm(encoded)
	require.NoError(t, err)
	assert.Equal(t, term, again)
	reencoded, err := c.EncodeTerm(again)
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}
