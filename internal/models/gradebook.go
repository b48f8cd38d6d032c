package models

import "encoding/json"

// Grade is a single gradebook entry.
type Grade struct {
	StudentID int     `json:"student_id"`
	GPA       float64 `json:"gpa"`
}

// Gradebook maps student IDs to GPAs. Keys are unique; entries keep the
// order in which a key was first recorded so that encoding is stable.
// Entries may outlive the roster membership of the student they reference.
// The zero value is an empty gradebook ready to use.
type Gradebook struct {
	order  []int
	grades map[int]float64
}

// Set records gpa for studentID, replacing any previous value.
func (g *Gradebook) Set(studentID int, gpa float64) {
	if g.grades == nil {
		g.grades = make(map[int]float64)
	}
	if _, ok := g.grades[studentID]; !ok {
		g.order = append(g.order, studentID)
	}
	g.grades[studentID] = gpa
}

// Get returns the GPA recorded for studentID.
func (g *Gradebook) Get(studentID int) (float64, bool) {
	gpa, ok := g.grades[studentID]
	return gpa, ok
}

// Len returns the number of entries.
func (g *Gradebook) Len() int {
	return len(g.order)
}

// Entries returns a copy of the entries in recording order.
func (g *Gradebook) Entries() []Grade {
	entries := make([]Grade, 0, len(g.order))
	for _, id := range g.order {
		entries = append(entries, Grade{StudentID: id, GPA: g.grades[id]})
	}
	return entries
}

// Average returns the mean GPA, or 0 when the gradebook is empty.
func (g *Gradebook) Average() float64 {
	if len(g.order) == 0 {
		return 0
	}
	var total float64
	for _, id := range g.order {
		total += g.grades[id]
	}
	return total / float64(len(g.order))
}

// MarshalJSON encodes the gradebook as a list of entries.
func (g Gradebook) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Entries())
}

// Clone returns an independent copy of the gradebook.
func (g *Gradebook) Clone() Gradebook {
	if len(g.order) == 0 {
		return Gradebook{}
	}
	out := Gradebook{order: append([]int(nil), g.order...), grades: make(map[int]float64, len(g.grades))}
	for id, gpa := range g.grades {
		out.grades[id] = gpa
	}
	return out
}
