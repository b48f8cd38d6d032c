package models

// Student is a roster entry. IDs are unique within one course roster.
type Student struct {
	ID             int     `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	OverallGPA     float64 `json:"overall_gpa"`
	EmailAddress   string  `json:"email_address"`
	MailingAddress Address `json:"mailing_address"`
}
