package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// xmax is zero only for rows inserted by the current statement.
const upsertTermScoreQuery = `INSERT INTO term_scores (term_enrollment_id, assessment_kind, score)
        VALUES ($1, $2, $3)
        ON CONFLICT (term_enrollment_id, assessment_kind)
        DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
        RETURNING (xmax = 0) AS inserted`

// ScoreRepository persists rolled-up term scores.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a ScoreRepository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// SubmitHolistic records a single score for the pair in one transaction.
// An existing score of the enrollment (lowest kind first) is overwritten;
// otherwise a regular score is created. The boolean reports creation.
func (r *ScoreRepository) SubmitHolistic(ctx context.Context, studentID, termID int64, score float64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin holistic score: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	enrollmentID, err := resolveEnrollment(ctx, tx, studentID, termID)
	if err != nil {
		return false, err
	}

	var scoreID int64
	err = tx.GetContext(ctx, &scoreID, `SELECT id FROM term_scores WHERE term_enrollment_id = $1 ORDER BY assessment_kind ASC LIMIT 1 FOR UPDATE`, enrollmentID)
	created := false
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `UPDATE term_scores SET score = $1, updated_at = NOW() WHERE id = $2`, score, scoreID); err != nil {
			return false, fmt.Errorf("update term score: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		created, err = upsertTermScore(ctx, tx, enrollmentID, models.AssessmentRegular, score)
		if err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("load term score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit holistic score: %w", err)
	}
	return created, nil
}

// SubmitKind creates or overwrites the score of one assessment kind.
func (r *ScoreRepository) SubmitKind(ctx context.Context, studentID, termID int64, kind models.AssessmentKind, score float64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin term score: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	enrollmentID, err := resolveEnrollment(ctx, tx, studentID, termID)
	if err != nil {
		return false, err
	}
	created, err := upsertTermScore(ctx, tx, enrollmentID, kind, score)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit term score: %w", err)
	}
	return created, nil
}

// UpdateByEnrollment overwrites existing scores of an enrollment, restricted
// to one kind when kind is set. sql.ErrNoRows means nothing was updated.
func (r *ScoreRepository) UpdateByEnrollment(ctx context.Context, enrollmentID int64, kind *models.AssessmentKind, score float64) error {
	query := `UPDATE term_scores SET score = $1, updated_at = NOW() WHERE term_enrollment_id = $2`
	args := []interface{}{score, enrollmentID}
	if kind != nil {
		query += " AND assessment_kind = $3"
		args = append(args, *kind)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update term scores: %w", err)
	}
	return expectAffected(res)
}

func upsertTermScore(ctx context.Context, q sqlx.QueryerContext, enrollmentID int64, kind models.AssessmentKind, score float64) (bool, error) {
	var inserted bool
	if err := sqlx.GetContext(ctx, q, &inserted, upsertTermScoreQuery, enrollmentID, kind, score); err != nil {
		return false, fmt.Errorf("upsert term score: %w", err)
	}
	return inserted, nil
}
