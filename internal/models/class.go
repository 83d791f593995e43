package models

import "time"

// Class represents a school class ("turma") owned by a teacher.
type Class struct {
	ID         int64     `db:"id" json:"id"`
	TeacherID  int64     `db:"teacher_id" json:"teacher_id"`
	SeriesName string    `db:"series_name" json:"series_name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with the owning teacher's name.
type ClassDetail struct {
	Class
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
