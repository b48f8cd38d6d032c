package models

// Clone returns a deep copy of the term.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	out := &Term{Code: t.Code}
	if t.Courses != nil {
		out.Courses = make([]Course, len(t.Courses))
		for i, course := range t.Courses {
			out.Courses[i] = CloneCourse(course)
		}
	}
	return out
}

// CloneCourse returns a deep copy of a course of any variant.
func CloneCourse(course Course) Course {
	switch c := course.(type) {
	case *OnlineCourse:
		cp := *c
		cp.CourseInfo = c.CourseInfo.clone()
		return &cp
	case *HybridCourse:
		cp := *c
		cp.CourseInfo = c.CourseInfo.clone()
		return &cp
	case *LabCourse:
		cp := *c
		cp.CourseInfo = c.CourseInfo.clone()
		return &cp
	default:
		return course
	}
}

func (c CourseInfo) clone() CourseInfo {
	if c.Students != nil {
		c.Students = append([]Student(nil), c.Students...)
	}
	c.Gradebook = c.Gradebook.Clone()
	return c
}
