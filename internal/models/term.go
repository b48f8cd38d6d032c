package models

// Term is an academic term holding up to MaxCoursesPerTerm courses in
// insertion order. Course IDs are unique within a term.
type Term struct {
	Code    string
	Courses []Course
}

// NewTerm creates an empty term.
func NewTerm(code string) *Term {
	return &Term{Code: code}
}

// CourseIndex returns the position of the course with id or -1.
func (t *Term) CourseIndex(id int) int {
	for i, course := range t.Courses {
		if course.Info().ID == id {
			return i
		}
	}
	return -1
}

// Course looks a course up by id.
func (t *Term) Course(id int) (Course, bool) {
	idx := t.CourseIndex(id)
	if idx < 0 {
		return nil, false
	}
	return t.Courses[idx], true
}
