package models

import "time"

// Variant identifies the delivery mode of a course.
type Variant string

// Supported course variants.
const (
	VariantOnline Variant = "ONLINE"
	VariantHybrid Variant = "HYBRID"
	VariantLab    Variant = "LAB"
)

// Capacity limits.
const (
	MaxCoursesPerTerm      = 6
	StandardCourseCapacity = 20
	LabCourseCapacity      = 10
)

// Lifecycle is the state of a course relative to the current time. It is
// always derived from the course dates and never stored.
type Lifecycle int

// Course lifecycle states, in chronological order.
const (
	LifecycleNotStarted Lifecycle = iota
	LifecycleInProgress
	LifecycleEnded
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleNotStarted:
		return "NOT_STARTED"
	case LifecycleInProgress:
		return "IN_PROGRESS"
	case LifecycleEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// LifecycleAt derives the lifecycle for a course running from start to end.
// A course whose end date has passed is ended even when its start date lies
// in the future.
func LifecycleAt(start, end, now time.Time) Lifecycle {
	switch {
	case !now.Before(end):
		return LifecycleEnded
	case now.Before(start):
		return LifecycleNotStarted
	default:
		return LifecycleInProgress
	}
}

// VariantField is one variant-specific field of a course in document order.
// Exactly one of Text or Location is meaningful, selected by IsLocation.
type VariantField struct {
	Tag        string
	Text       string
	Location   Location
	IsLocation bool
}

// Course is implemented by every course variant.
type Course interface {
	// Info exposes the fields shared by every variant.
	Info() *CourseInfo
	Variant() Variant
	// Capacity is the maximum roster size.
	Capacity() int
	// Schedule renders days, times and location on one line.
	Schedule() string
	// VariantFields lists the variant-specific fields in document order.
	VariantFields() []VariantField
}

// CourseInfo holds the fields shared by all course variants.
type CourseInfo struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	MeetingDays  string    `json:"meeting_days"`
	MeetingTimes string    `json:"meeting_times"`
	TermCode     string    `json:"term_code"`
	// Students is kept in enrollment order.
	Students  []Student `json:"students"`
	Gradebook Gradebook `json:"gradebook"`
}

// Info returns the receiver; variants embed CourseInfo to satisfy Course.
func (c *CourseInfo) Info() *CourseInfo {
	return c
}

// Lifecycle derives the course state at now.
func (c *CourseInfo) Lifecycle(now time.Time) Lifecycle {
	return LifecycleAt(c.StartDate, c.EndDate, now)
}

// StudentIndex returns the roster position of studentID or -1.
func (c *CourseInfo) StudentIndex(studentID int) int {
	for i := range c.Students {
		if c.Students[i].ID == studentID {
			return i
		}
	}
	return -1
}

// HasStudent reports whether studentID is on the roster.
func (c *CourseInfo) HasStudent(studentID int) bool {
	return c.StudentIndex(studentID) >= 0
}

// Student returns the roster entry for studentID.
func (c *CourseInfo) Student(studentID int) (Student, bool) {
	idx := c.StudentIndex(studentID)
	if idx < 0 {
		return Student{}, false
	}
	return c.Students[idx], true
}

func (c *CourseInfo) baseSchedule() string {
	return "Days: " + c.MeetingDays + ", Times: " + c.MeetingTimes
}
