package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const classDetailSelect = `SELECT c.id, c.teacher_id, c.series_name, c.created_at, c.updated_at, t.name AS teacher_name
        FROM classes c
        JOIN teachers t ON t.id = c.teacher_id`

// ClassRepository provides persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class with its teacher's name.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassDetail, error) {
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, classDetailSelect+" ORDER BY c.series_name, c.id"); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByTeacher returns the classes owned by a teacher.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.ClassDetail, error) {
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, classDetailSelect+" WHERE c.teacher_id = $1 ORDER BY c.series_name, c.id", teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// FindByID fetches a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, classDetailSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (teacher_id, series_name) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, class.TeacherID, class.SeriesName).Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies an existing class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes SET teacher_id = $1, series_name = $2, updated_at = NOW() WHERE id = $3 RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, class.TeacherID, class.SeriesName, class.ID).Scan(&class.CreatedAt, &class.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "classes", id)
}
