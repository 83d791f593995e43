package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// The no-op DO UPDATE makes RETURNING yield the id of an existing row too.
const resolveEnrollmentQuery = `INSERT INTO term_enrollments (student_id, term_id)
        VALUES ($1, $2)
        ON CONFLICT (student_id, term_id) DO UPDATE SET student_id = EXCLUDED.student_id
        RETURNING id`

// EnrollmentRepository resolves the (student, term) rows scores attach to.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Resolve returns the enrollment id for the pair, creating the row when it
// does not exist. Concurrent callers converge on a single row.
func (r *EnrollmentRepository) Resolve(ctx context.Context, studentID, termID int64) (int64, error) {
	return resolveEnrollment(ctx, r.db, studentID, termID)
}

// FindByStudentAndTerm looks up an existing enrollment without creating one.
func (r *EnrollmentRepository) FindByStudentAndTerm(ctx context.Context, studentID, termID int64) (*models.TermEnrollment, error) {
	const query = `SELECT id, student_id, term_id, created_at FROM term_enrollments WHERE student_id = $1 AND term_id = $2`
	var enrollment models.TermEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, termID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func resolveEnrollment(ctx context.Context, q sqlx.QueryerContext, studentID, termID int64) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, resolveEnrollmentQuery, studentID, termID); err != nil {
		return 0, fmt.Errorf("resolve enrollment: %w", err)
	}
	return id, nil
}
