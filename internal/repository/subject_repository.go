package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const subjectColumns = "id, class_id, name, created_at, updated_at"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns every subject.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, "SELECT "+subjectColumns+" FROM subjects ORDER BY name ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListByClass returns the subjects of a class.
func (r *SubjectRepository) ListByClass(ctx context.Context, classID int64) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, "SELECT "+subjectColumns+" FROM subjects WHERE class_id = $1 ORDER BY name ASC, id ASC", classID); err != nil {
		return nil, fmt.Errorf("list subjects by class: %w", err)
	}
	return subjects, nil
}

// ListWithTerms joins subjects with their terms, optionally for one class.
func (r *SubjectRepository) ListWithTerms(ctx context.Context, classID *int64) ([]models.SubjectTerm, error) {
	query := `SELECT s.id AS subject_id, s.name AS subject_name, s.class_id, t.id AS term_id, t.description AS term_description
        FROM subjects s
        LEFT JOIN terms t ON t.subject_id = s.id`
	var args []interface{}
	if classID != nil {
		query += " WHERE s.class_id = $1"
		args = append(args, *classID)
	}
	query += " ORDER BY s.name ASC, s.id ASC, t.id ASC"

	var rows []models.SubjectTerm
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects with terms: %w", err)
	}
	return rows, nil
}

// BelongsToClass reports whether the subject is taught in the class.
func (r *SubjectRepository) BelongsToClass(ctx context.Context, subjectID, classID int64) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM subjects WHERE id = $1 AND class_id = $2", subjectID, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject class: %w", err)
	}
	return true, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (class_id, name) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, subject.ClassID, subject.Name).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	const query = `UPDATE subjects SET class_id = $1, name = $2, updated_at = NOW() WHERE id = $3 RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, subject.ClassID, subject.Name, subject.ID).Scan(&subject.CreatedAt, &subject.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "subjects", id)
}
