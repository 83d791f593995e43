package models

import "time"

// Subject represents a subject ("matéria") taught in one class.
type Subject struct {
	ID        int64     `db:"id" json:"id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectTerm is a subject joined with one of its terms. Subjects without
// terms appear once with a nil term.
type SubjectTerm struct {
	SubjectID       int64   `db:"subject_id" json:"subject_id"`
	SubjectName     string  `db:"subject_name" json:"subject_name"`
	ClassID         int64   `db:"class_id" json:"class_id"`
	TermID          *int64  `db:"term_id" json:"term_id,omitempty"`
	TermDescription *string `db:"term_description" json:"term_description,omitempty"`
}
