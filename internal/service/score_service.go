package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

const (
	minScore = 0
	maxScore = 10
)

type scoreRepository interface {
	SubmitHolistic(ctx context.Context, studentID, termID int64, score float64) (bool, error)
	SubmitKind(ctx context.Context, studentID, termID int64, kind models.AssessmentKind, score float64) (bool, error)
	UpdateByEnrollment(ctx context.Context, enrollmentID int64, kind *models.AssessmentKind, score float64) error
}

type enrollmentLookup interface {
	FindByStudentAndTerm(ctx context.Context, studentID, termID int64) (*models.TermEnrollment, error)
}

type subjectMembership interface {
	BelongsToClass(ctx context.Context, subjectID, classID int64) (bool, error)
}

type scoreMetrics interface {
	RecordScoreSubmission(variant, outcome string)
}

// ScoreValue accepts a JSON number or a numeric string.
type ScoreValue float64

// UnmarshalJSON implements json.Unmarshaler.
func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("score %q is not numeric", raw)
		}
		*v = ScoreValue(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("score must be numeric")
	}
	*v = ScoreValue(f)
	return nil
}

// SubmitScoreRequest carries a single holistic score.
type SubmitScoreRequest struct {
	Score *ScoreValue `json:"score"`
}

// SubjectScoreRequest carries a score of an explicit assessment kind.
type SubjectScoreRequest struct {
	Score          *ScoreValue `json:"score"`
	AssessmentKind *int16      `json:"assessment_kind"`
}

// ScoreService handles the holistic score workflows.
type ScoreService struct {
	repo        scoreRepository
	enrollments enrollmentLookup
	subjects    subjectMembership
	metrics     scoreMetrics
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs a ScoreService.
func NewScoreService(repo scoreRepository, enrollments enrollmentLookup, subjects subjectMembership, metrics scoreMetrics, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{repo: repo, enrollments: enrollments, subjects: subjects, metrics: metrics, validator: validate, logger: logger}
}

// SubmitHolistic records one score for the student and term. It overwrites an
// existing score of the pair or creates a regular one, reporting creation.
func (s *ScoreService) SubmitHolistic(ctx context.Context, studentID, termID int64, req SubmitScoreRequest) (bool, error) {
	score, err := checkScore(req.Score)
	if err != nil {
		return false, err
	}
	created, err := s.repo.SubmitHolistic(ctx, studentID, termID, score)
	if err != nil {
		s.record("holistic", "error")
		return false, writeError(err, "enrollment not found", "failed to save score")
	}
	s.record("holistic", outcome(created))
	s.logger.Info("holistic score saved",
		zap.Int64("student_id", studentID),
		zap.Int64("term_id", termID),
		zap.Float64("score", score),
		zap.Bool("created", created),
	)
	return created, nil
}

// SubmitForSubject records a score of an explicit kind after checking that
// the subject is taught in the class.
func (s *ScoreService) SubmitForSubject(ctx context.Context, studentID, termID, subjectID, classID int64, req SubjectScoreRequest) (bool, error) {
	score, err := checkScore(req.Score)
	if err != nil {
		return false, err
	}
	if req.AssessmentKind == nil {
		return false, invalid("assessment_kind is required")
	}
	kind := models.AssessmentKind(*req.AssessmentKind)
	if !kind.Valid() {
		return false, invalid("assessment_kind must be 0 or 1")
	}

	ok, err := s.subjects.BelongsToClass(ctx, subjectID, classID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check subject")
	}
	if !ok {
		return false, notFound("subject not found for class")
	}

	created, err := s.repo.SubmitKind(ctx, studentID, termID, kind, score)
	if err != nil {
		s.record("subject", "error")
		return false, writeError(err, "enrollment not found", "failed to save score")
	}
	s.record("subject", outcome(created))
	return created, nil
}

// Update overwrites existing scores of the pair without creating anything,
// restricted to one kind when kind is set.
func (s *ScoreService) Update(ctx context.Context, studentID, termID int64, kind *models.AssessmentKind, req SubmitScoreRequest) error {
	score, err := checkScore(req.Score)
	if err != nil {
		return err
	}
	enrollment, err := s.enrollments.FindByStudentAndTerm(ctx, studentID, termID)
	if err != nil {
		return loadError(err, "enrollment not found for student and term", "failed to load enrollment")
	}
	if err := s.repo.UpdateByEnrollment(ctx, enrollment.ID, kind, score); err != nil {
		return loadError(err, "score not found for student and term", "failed to update score")
	}
	s.record("update", "updated")
	return nil
}

func (s *ScoreService) record(variant, result string) {
	if s.metrics != nil {
		s.metrics.RecordScoreSubmission(variant, result)
	}
}

func checkScore(v *ScoreValue) (float64, error) {
	if v == nil {
		return 0, invalid("score is required")
	}
	score := float64(*v)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, invalid("score must be numeric")
	}
	if score < minScore || score > maxScore {
		return 0, invalid("score must be between 0 and 10")
	}
	return score, nil
}

func outcome(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}
