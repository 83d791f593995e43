package models

import "time"

// Skill is a named competency ("habilidade") that questions can exercise.
type Skill struct {
	ID          int64     `db:"id" json:"id"`
	SubjectID   *int64    `db:"subject_id" json:"subject_id,omitempty"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SkillPerformance records that a student exercised a skill in a term.
type SkillPerformance struct {
	ID               int64     `db:"id" json:"id"`
	TermEnrollmentID int64     `db:"term_enrollment_id" json:"term_enrollment_id"`
	SkillID          int64     `db:"skill_id" json:"skill_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// StudentSkill is a skill exercised by a student, with the term it belongs to.
type StudentSkill struct {
	SkillID     int64  `db:"skill_id" json:"skill_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	SubjectID   *int64 `db:"subject_id" json:"subject_id,omitempty"`
	TermID      int64  `db:"term_id" json:"term_id"`
}
