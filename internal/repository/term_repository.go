package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const termColumns = "id, subject_id, description, created_at, updated_at"

// TermRepository handles persistence for terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository constructs a TermRepository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// ListBySubject returns the terms of a subject.
func (r *TermRepository) ListBySubject(ctx context.Context, subjectID int64) ([]models.Term, error) {
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, "SELECT "+termColumns+" FROM terms WHERE subject_id = $1 ORDER BY id ASC", subjectID); err != nil {
		return nil, fmt.Errorf("list terms by subject: %w", err)
	}
	return terms, nil
}

// ListByClass returns the terms of every subject of a class.
func (r *TermRepository) ListByClass(ctx context.Context, classID int64) ([]models.Term, error) {
	const query = `SELECT t.id, t.subject_id, t.description, t.created_at, t.updated_at
        FROM terms t
        JOIN subjects s ON s.id = t.subject_id
        WHERE s.class_id = $1
        ORDER BY t.subject_id ASC, t.id ASC`
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, classID); err != nil {
		return nil, fmt.Errorf("list terms by class: %w", err)
	}
	return terms, nil
}

// FindByID fetches a term by ID.
func (r *TermRepository) FindByID(ctx context.Context, id int64) (*models.Term, error) {
	var term models.Term
	if err := r.db.GetContext(ctx, &term, "SELECT "+termColumns+" FROM terms WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &term, nil
}

// Create inserts a term.
func (r *TermRepository) Create(ctx context.Context, term *models.Term) error {
	const query = `INSERT INTO terms (subject_id, description) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, term.SubjectID, term.Description).Scan(&term.ID, &term.CreatedAt, &term.UpdatedAt); err != nil {
		return fmt.Errorf("create term: %w", err)
	}
	return nil
}

// Update modifies a term.
func (r *TermRepository) Update(ctx context.Context, term *models.Term) error {
	const query = `UPDATE terms SET subject_id = $1, description = $2, updated_at = NOW() WHERE id = $3 RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, term.SubjectID, term.Description, term.ID).Scan(&term.CreatedAt, &term.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update term: %w", err)
	}
	return nil
}

// Delete removes a term.
func (r *TermRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "terms", id)
}
