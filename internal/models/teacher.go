package models

import "time"

// TeacherRole is the capability level derived from a teacher's stored priority.
type TeacherRole int

const (
	// RoleScoped teachers only see the classes they own.
	RoleScoped TeacherRole = iota
	// RoleFullAccess teachers see every class.
	RoleFullAccess
)

// CanViewAllClasses reports whether the role lifts the ownership filter.
func (r TeacherRole) CanViewAllClasses() bool {
	return r == RoleFullAccess
}

func (r TeacherRole) String() string {
	if r == RoleFullAccess {
		return "full_access"
	}
	return "scoped"
}

// Teacher represents an instructor record.
type Teacher struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	CPF          string     `db:"cpf" json:"cpf"`
	BirthDate    *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Priority     int16      `db:"priority" json:"priority"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Role maps the raw priority column onto a TeacherRole. Any non-zero priority
// grants full access.
func (t Teacher) Role() TeacherRole {
	if t.Priority != 0 {
		return RoleFullAccess
	}
	return RoleScoped
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search   string
	Page     int
	PageSize int
}
