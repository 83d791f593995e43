package models

import "time"

// TermEnrollment links one student to one term. All scores of the pair hang
// off this row; (student_id, term_id) is unique.
type TermEnrollment struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	TermID    int64     `db:"term_id" json:"term_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
