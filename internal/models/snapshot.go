package models

import "time"

// SnapshotStatus reports where an archival request stands.
type SnapshotStatus string

// Snapshot request states.
const (
	SnapshotStatusQueued   SnapshotStatus = "QUEUED"
	SnapshotStatusArchived SnapshotStatus = "ARCHIVED"
)

// TermSnapshot is an archived, encoded term document.
type TermSnapshot struct {
	ID          string    `db:"id" json:"id"`
	TermCode    string    `db:"term_code" json:"term_code"`
	CourseCount int       `db:"course_count" json:"course_count"`
	Document    string    `db:"document" json:"document,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SnapshotTicket is returned when an archival request is accepted.
type SnapshotTicket struct {
	ID       string         `json:"id"`
	TermCode string         `json:"term_code"`
	Status   SnapshotStatus `json:"status"`
}
