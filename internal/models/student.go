package models

import "time"

// Student represents a learner, optionally assigned to a class.
type Student struct {
	ID        int64      `db:"id" json:"id"`
	ClassID   *int64     `db:"class_id" json:"class_id,omitempty"`
	Name      string     `db:"name" json:"name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter defines filters for listing students.
type StudentFilter struct {
	ClassID  *int64
	Search   string
	Page     int
	PageSize int
}
