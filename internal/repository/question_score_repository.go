package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const (
	upsertQuestionScoreQuery = `INSERT INTO question_scores (term_enrollment_id, question_number, score, weight)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (term_enrollment_id, question_number)
        DO UPDATE SET score = EXCLUDED.score, weight = EXCLUDED.weight, updated_at = NOW()`
	insertSkillPerformanceQuery = `INSERT INTO skill_performances (term_enrollment_id, skill_id)
        VALUES ($1, $2)
        ON CONFLICT (term_enrollment_id, skill_id) DO NOTHING`
	questionTotalsQuery = `SELECT COALESCE(SUM(score), 0) AS total, COUNT(*) AS count
        FROM question_scores
        WHERE term_enrollment_id = $1`
)

// QuestionScoreRepository persists per-question scores and the skill
// performances they carry.
type QuestionScoreRepository struct {
	db *sqlx.DB
}

// NewQuestionScoreRepository creates a QuestionScoreRepository.
func NewQuestionScoreRepository(db *sqlx.DB) *QuestionScoreRepository {
	return &QuestionScoreRepository{db: db}
}

// Submit stores a whole batch atomically: the enrollment row, every question
// score, every skill performance and the rolled-up term score. The total is
// recomputed from all stored questions of the enrollment and passed through
// normalize before being saved.
func (r *QuestionScoreRepository) Submit(ctx context.Context, batch models.QuestionBatch, normalize models.NormalizeFunc) (*models.QuestionSubmission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin question batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	enrollmentID, err := resolveEnrollment(ctx, tx, batch.StudentID, batch.TermID)
	if err != nil {
		return nil, err
	}

	for _, q := range batch.Questions {
		if _, err := tx.ExecContext(ctx, upsertQuestionScoreQuery, enrollmentID, q.QuestionNumber, q.Score, q.Weight); err != nil {
			return nil, fmt.Errorf("upsert question %d: %w", q.QuestionNumber, err)
		}
	}
	for _, skillID := range batch.SkillIDs {
		if _, err := tx.ExecContext(ctx, insertSkillPerformanceQuery, enrollmentID, skillID); err != nil {
			return nil, fmt.Errorf("insert skill performance: %w", err)
		}
	}

	var totals struct {
		Total float64 `db:"total"`
		Count int     `db:"count"`
	}
	if err := tx.GetContext(ctx, &totals, questionTotalsQuery, enrollmentID); err != nil {
		return nil, fmt.Errorf("sum question scores: %w", err)
	}

	final := normalize(totals.Total, totals.Count)
	if final > models.MaxStoredScore {
		return nil, fmt.Errorf("final score %.2f: %w", final, models.ErrScoreOutOfRange)
	}
	if _, err := upsertTermScore(ctx, tx, enrollmentID, batch.Kind, final); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit question batch: %w", err)
	}
	return &models.QuestionSubmission{
		TermEnrollmentID: enrollmentID,
		RawTotal:         totals.Total,
		QuestionCount:    totals.Count,
		FinalScore:       final,
	}, nil
}

// ListByStudentTerm returns the stored question scores of the pair ordered by
// question number.
func (r *QuestionScoreRepository) ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.QuestionScore, error) {
	const query = `SELECT qs.id, qs.term_enrollment_id, qs.question_number, qs.score, qs.weight, qs.created_at, qs.updated_at
        FROM question_scores qs
        JOIN term_enrollments te ON te.id = qs.term_enrollment_id
        WHERE te.student_id = $1 AND te.term_id = $2
        ORDER BY qs.question_number ASC, qs.id ASC`
	var scores []models.QuestionScore
	if err := r.db.SelectContext(ctx, &scores, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("list question scores: %w", err)
	}
	return scores, nil
}

// MaxAssessmentKind returns the highest kind recorded for the pair, or nil.
func (r *QuestionScoreRepository) MaxAssessmentKind(ctx context.Context, studentID, termID int64) (*models.AssessmentKind, error) {
	const query = `SELECT MAX(ts.assessment_kind)
        FROM term_scores ts
        JOIN term_enrollments te ON te.id = ts.term_enrollment_id
        WHERE te.student_id = $1 AND te.term_id = $2`
	var kind sql.NullInt16
	if err := r.db.GetContext(ctx, &kind, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("max assessment kind: %w", err)
	}
	if !kind.Valid {
		return nil, nil
	}
	k := models.AssessmentKind(kind.Int16)
	return &k, nil
}
