package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const studentColumns = "id, class_id, name, birth_date, created_at, updated_at"

// StudentRepository manages persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching filters along with total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var args []interface{}
	if filter.ClassID != nil {
		base += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, *filter.ClassID)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d", studentColumns, base, size, (page-1)*size)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByClass returns every student of a class ordered by name.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students WHERE class_id = $1 ORDER BY name ASC, id ASC", classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// ListByTermAndTeacher returns students enrolled in a term of a class the
// teacher owns.
func (r *StudentRepository) ListByTermAndTeacher(ctx context.Context, termID, teacherID int64) ([]models.Student, error) {
	const query = `SELECT s.id, s.class_id, s.name, s.birth_date, s.created_at, s.updated_at
        FROM students s
        JOIN term_enrollments te ON te.student_id = s.id
        JOIN terms t ON t.id = te.term_id
        JOIN subjects sub ON sub.id = t.subject_id
        JOIN classes c ON c.id = sub.class_id
        WHERE te.term_id = $1 AND c.teacher_id = $2
        ORDER BY s.name ASC, s.id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, termID, teacherID); err != nil {
		return nil, fmt.Errorf("list students by term and teacher: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (class_id, name, birth_date) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, student.ClassID, student.Name, student.BirthDate).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET class_id = $1, name = $2, birth_date = $3, updated_at = NOW() WHERE id = $4 RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, student.ClassID, student.Name, student.BirthDate, student.ID).Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "students", id)
}
