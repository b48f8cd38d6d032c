package models

// OnlineCourse is delivered remotely through a URL.
type OnlineCourse struct {
	CourseInfo
	URL string `json:"url"`
}

// Variant implements Course.
func (c *OnlineCourse) Variant() Variant { return VariantOnline }

// Capacity implements Course.
func (c *OnlineCourse) Capacity() int { return StandardCourseCapacity }

// Schedule implements Course.
func (c *OnlineCourse) Schedule() string {
	return c.baseSchedule() + ", Location : " + c.URL
}

// VariantFields implements Course.
func (c *OnlineCourse) VariantFields() []VariantField {
	return []VariantField{{Tag: "url", Text: c.URL}}
}

// HybridCourse combines remote delivery with one classroom.
type HybridCourse struct {
	CourseInfo
	URL               string   `json:"url"`
	ClassroomLocation Location `json:"classroom_location"`
}

// Variant implements Course.
func (c *HybridCourse) Variant() Variant { return VariantHybrid }

// Capacity implements Course.
func (c *HybridCourse) Capacity() int { return StandardCourseCapacity }

// Schedule implements Course.
func (c *HybridCourse) Schedule() string {
	return c.baseSchedule() + ", Location : (url: " + c.URL + ", " + c.ClassroomLocation.Format() + ")"
}

// VariantFields implements Course.
func (c *HybridCourse) VariantFields() []VariantField {
	return []VariantField{
		{Tag: "url", Text: c.URL},
		{Tag: "classroomlocation", Location: c.ClassroomLocation, IsLocation: true},
	}
}

// LabCourse meets in a classroom and a separate lab room, with a smaller roster.
type LabCourse struct {
	CourseInfo
	ClassroomLocation Location `json:"classroom_location"`
	LabRoomLocation   Location `json:"lab_room_location"`
}

// Variant implements Course.
func (c *LabCourse) Variant() Variant { return VariantLab }

// Capacity implements Course.
func (c *LabCourse) Capacity() int { return LabCourseCapacity }

// Schedule implements Course.
func (c *LabCourse) Schedule() string {
	return c.baseSchedule() + ", Location : (class: " + c.ClassroomLocation.Format() + ", lab: " + c.LabRoomLocation.Format() + ")"
}

// VariantFields implements Course.
func (c *LabCourse) VariantFields() []VariantField {
	return []VariantField{
		{Tag: "classroomlocation", Location: c.ClassroomLocation, IsLocation: true},
		{Tag: "labroomlocation", Location: c.LabRoomLocation, IsLocation: true},
	}
}

var (
	_ Course = (*OnlineCourse)(nil)
	_ Course = (*HybridCourse)(nil)
	_ Course = (*LabCourse)(nil)
)
