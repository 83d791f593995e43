package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// RosterFilter selects a class roster for a term. SubjectID, when set,
// requires the term to belong to that subject.
type RosterFilter struct {
	ClassID   int64
	TermID    int64
	SubjectID *int64
	Kind      models.AssessmentKind
}

// SkillCountFilter scopes skill usage counts to a class term. Kind, when set,
// keeps only enrollments that have a score of that kind.
type SkillCountFilter struct {
	ClassID   int64
	TermID    int64
	Kind      *models.AssessmentKind
	Ascending bool
	Limit     int
}

// ReportRepository runs the aggregate reporting queries.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ClassAverage averages the recorded scores of a kind for a class term. A nil
// result means nothing was recorded.
func (r *ReportRepository) ClassAverage(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (*float64, error) {
	const query = `SELECT AVG(ts.score)
        FROM term_scores ts
        JOIN term_enrollments te ON te.id = ts.term_enrollment_id
        JOIN students s ON s.id = te.student_id
        WHERE s.class_id = $1 AND te.term_id = $2 AND ts.assessment_kind = $3`
	var avg sql.NullFloat64
	if err := r.db.GetContext(ctx, &avg, query, classID, termID, kind); err != nil {
		return nil, fmt.Errorf("class average: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// CountStudentsWithScores counts distinct students of the class with at least
// one score in the term.
func (r *ReportRepository) CountStudentsWithScores(ctx context.Context, classID, termID int64) (int, error) {
	const query = `SELECT COUNT(DISTINCT te.student_id)
        FROM term_enrollments te
        JOIN term_scores ts ON ts.term_enrollment_id = te.id
        JOIN students s ON s.id = te.student_id
        WHERE s.class_id = $1 AND te.term_id = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, classID, termID); err != nil {
		return 0, fmt.Errorf("count students with scores: %w", err)
	}
	return total, nil
}

// ScoreBands buckets the scores of enrolled students into chart bands.
func (r *ReportRepository) ScoreBands(ctx context.Context, classID, termID int64) ([]models.ScoreBand, error) {
	const query = `SELECT band, COUNT(*) AS total FROM (
            SELECT CASE
                WHEN ts.score IS NULL THEN 'no_score'
                WHEN ts.score >= 0 AND ts.score < 5 THEN '0-4.9'
                WHEN ts.score >= 5 AND ts.score < 7 THEN '5-6.9'
                WHEN ts.score >= 7 AND ts.score <= 10 THEN '7-10'
                ELSE 'out_of_range'
            END AS band
            FROM students s
            JOIN term_enrollments te ON te.student_id = s.id
            LEFT JOIN term_scores ts ON ts.term_enrollment_id = te.id
            WHERE s.class_id = $1 AND te.term_id = $2
        ) banded
        GROUP BY band
        ORDER BY band`
	var bands []models.ScoreBand
	if err := r.db.SelectContext(ctx, &bands, query, classID, termID); err != nil {
		return nil, fmt.Errorf("score bands: %w", err)
	}
	return bands, nil
}

// ScoresByStudent lists every score of a student across terms.
func (r *ReportRepository) ScoresByStudent(ctx context.Context, studentID int64) ([]models.StudentTermScore, error) {
	return r.studentScores(ctx, "te.student_id = $1", studentID)
}

// ScoresByStudentTerm lists the scores of a student in one term.
func (r *ReportRepository) ScoresByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.StudentTermScore, error) {
	return r.studentScores(ctx, "te.student_id = $1 AND te.term_id = $2", studentID, termID)
}

func (r *ReportRepository) studentScores(ctx context.Context, where string, args ...interface{}) ([]models.StudentTermScore, error) {
	query := `SELECT te.id AS term_enrollment_id, ts.id AS term_score_id, t.id AS term_id, t.description AS term_description,
            ts.assessment_kind, ts.score
        FROM term_enrollments te
        JOIN term_scores ts ON ts.term_enrollment_id = te.id
        JOIN terms t ON t.id = te.term_id
        WHERE ` + where + `
        ORDER BY t.id ASC, ts.assessment_kind ASC`
	var scores []models.StudentTermScore
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("list student scores: %w", err)
	}
	return scores, nil
}

// StudentSubjectScores lists a student's scores per subject for a term of a class.
func (r *ReportRepository) StudentSubjectScores(ctx context.Context, studentID, termID, classID int64) ([]models.SubjectScore, error) {
	const query = `SELECT sub.id AS subject_id, sub.name AS subject_name, ts.assessment_kind, ts.score
        FROM term_enrollments te
        JOIN students s ON s.id = te.student_id
        JOIN terms t ON t.id = te.term_id
        JOIN subjects sub ON sub.id = t.subject_id
        JOIN term_scores ts ON ts.term_enrollment_id = te.id
        WHERE te.student_id = $1 AND te.term_id = $2 AND s.class_id = $3
        ORDER BY sub.name ASC, ts.assessment_kind ASC`
	var scores []models.SubjectScore
	if err := r.db.SelectContext(ctx, &scores, query, studentID, termID, classID); err != nil {
		return nil, fmt.Errorf("list student subject scores: %w", err)
	}
	return scores, nil
}

// StudentSubjectScore returns the student's score in one subject, lowest kind
// first. sql.ErrNoRows signals that nothing was recorded.
func (r *ReportRepository) StudentSubjectScore(ctx context.Context, studentID, termID, subjectID, classID int64) (*models.SubjectScore, error) {
	const query = `SELECT sub.id AS subject_id, sub.name AS subject_name, ts.assessment_kind, ts.score
        FROM term_enrollments te
        JOIN students s ON s.id = te.student_id
        JOIN terms t ON t.id = te.term_id
        JOIN subjects sub ON sub.id = t.subject_id
        JOIN term_scores ts ON ts.term_enrollment_id = te.id
        WHERE te.student_id = $1 AND te.term_id = $2 AND sub.id = $3 AND s.class_id = $4
        ORDER BY ts.assessment_kind ASC
        LIMIT 1`
	var score models.SubjectScore
	if err := r.db.GetContext(ctx, &score, query, studentID, termID, subjectID, classID); err != nil {
		return nil, err
	}
	return &score, nil
}

// ClassRoster lists every student of the class with the score of the given
// kind, or nil when none is recorded.
func (r *ReportRepository) ClassRoster(ctx context.Context, filter RosterFilter) ([]models.RosterScore, error) {
	query := `SELECT s.id AS student_id, s.name AS student_name, ts.score
        FROM students s
        LEFT JOIN term_enrollments te ON te.student_id = s.id AND te.term_id = $2`
	args := []interface{}{filter.ClassID, filter.TermID, filter.Kind}
	if filter.SubjectID != nil {
		query += " AND te.term_id IN (SELECT id FROM terms WHERE subject_id = $4)"
		args = append(args, *filter.SubjectID)
	}
	query += `
        LEFT JOIN term_scores ts ON ts.term_enrollment_id = te.id AND ts.assessment_kind = $3
        WHERE s.class_id = $1
        ORDER BY s.name ASC, s.id ASC`
	var roster []models.RosterScore
	if err := r.db.SelectContext(ctx, &roster, query, args...); err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}
	return roster, nil
}

// ScoresByKind lists only the students that have a score of the kind for the
// class, term and subject.
func (r *ReportRepository) ScoresByKind(ctx context.Context, kind models.AssessmentKind, classID, termID, subjectID int64) ([]models.KindScore, error) {
	const query = `SELECT s.id AS student_id, s.name AS student_name, ts.score, t.description AS term_description,
            sub.name AS subject_name, ts.assessment_kind
        FROM students s
        JOIN term_enrollments te ON te.student_id = s.id
        JOIN term_scores ts ON ts.term_enrollment_id = te.id
        JOIN terms t ON t.id = te.term_id
        JOIN subjects sub ON sub.id = t.subject_id AND sub.class_id = s.class_id
        WHERE ts.assessment_kind = $1 AND s.class_id = $2 AND te.term_id = $3 AND sub.id = $4
        ORDER BY s.name ASC, s.id ASC`
	var scores []models.KindScore
	if err := r.db.SelectContext(ctx, &scores, query, kind, classID, termID, subjectID); err != nil {
		return nil, fmt.Errorf("list scores by kind: %w", err)
	}
	return scores, nil
}

// ScoreSheet pivots both assessment kinds per student for a class term.
func (r *ReportRepository) ScoreSheet(ctx context.Context, classID, termID int64) ([]models.ScoreSheetRow, error) {
	const query = `SELECT s.id AS student_id, s.name AS student_name,
            MAX(CASE WHEN ts.assessment_kind = 0 THEN ts.score END) AS regular_score,
            MAX(CASE WHEN ts.assessment_kind = 1 THEN ts.score END) AS make_up_score
        FROM students s
        LEFT JOIN term_enrollments te ON te.student_id = s.id AND te.term_id = $2
        LEFT JOIN term_scores ts ON ts.term_enrollment_id = te.id
        WHERE s.class_id = $1
        GROUP BY s.id, s.name
        ORDER BY s.name ASC, s.id ASC`
	var rows []models.ScoreSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, classID, termID); err != nil {
		return nil, fmt.Errorf("score sheet: %w", err)
	}
	return rows, nil
}

// SkillCounts counts skill performances per skill for a class term.
func (r *ReportRepository) SkillCounts(ctx context.Context, filter SkillCountFilter) ([]models.SkillCount, error) {
	query := `SELECT sk.name, COUNT(*) AS total
        FROM skill_performances sp
        JOIN term_enrollments te ON te.id = sp.term_enrollment_id
        JOIN students s ON s.id = te.student_id
        JOIN skills sk ON sk.id = sp.skill_id
        WHERE s.class_id = $1 AND te.term_id = $2`
	args := []interface{}{filter.ClassID, filter.TermID}
	if filter.Kind != nil {
		query += " AND EXISTS (SELECT 1 FROM term_scores ts WHERE ts.term_enrollment_id = te.id AND ts.assessment_kind = $3)"
		args = append(args, *filter.Kind)
	}
	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	query += fmt.Sprintf(" GROUP BY sk.id, sk.name ORDER BY total %s, sk.name ASC, sk.id ASC", order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var counts []models.SkillCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count skills: %w", err)
	}
	return counts, nil
}

// StudentSkillCounts counts skill performances per student and skill, most
// exercised first within each student.
func (r *ReportRepository) StudentSkillCounts(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.StudentSkillCount, error) {
	const query = `SELECT s.id AS student_id, s.name AS student_name, sk.name AS skill_name, COUNT(*) AS total
        FROM skill_performances sp
        JOIN term_enrollments te ON te.id = sp.term_enrollment_id
        JOIN students s ON s.id = te.student_id
        JOIN skills sk ON sk.id = sp.skill_id
        WHERE s.class_id = $1 AND te.term_id = $2
          AND EXISTS (SELECT 1 FROM term_scores ts WHERE ts.term_enrollment_id = te.id AND ts.assessment_kind = $3)
        GROUP BY s.id, s.name, sk.id, sk.name
        ORDER BY s.name ASC, s.id ASC, total DESC, sk.name ASC, sk.id ASC`
	var counts []models.StudentSkillCount
	if err := r.db.SelectContext(ctx, &counts, query, classID, termID, kind); err != nil {
		return nil, fmt.Errorf("count student skills: %w", err)
	}
	return counts, nil
}
