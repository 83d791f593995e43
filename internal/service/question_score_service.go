package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type questionScoreRepository interface {
	Submit(ctx context.Context, batch models.QuestionBatch, normalize models.NormalizeFunc) (*models.QuestionSubmission, error)
	ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.QuestionScore, error)
	MaxAssessmentKind(ctx context.Context, studentID, termID int64) (*models.AssessmentKind, error)
}

type skillResolver interface {
	ResolveCodes(ctx context.Context, codes []string) (map[string]int64, error)
	ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error)
}

var correctStatuses = map[string]struct{}{
	"correct": {},
	"correto": {},
	"certo":   {},
}

// QuestionEntryRequest is one answered question.
type QuestionEntryRequest struct {
	QuestionNumber int      `json:"question_number" validate:"gt=0,lte=1000"`
	Weight         *float64 `json:"weight" validate:"omitempty,gte=0,lte=10"`
	Status         string   `json:"status" validate:"max=50"`
	Correct        *bool    `json:"correct"`
	Score          *float64 `json:"score" validate:"omitempty,gte=0,lte=10"`
	Skill          string   `json:"skill" validate:"max=100"`
}

// SubmitQuestionScoresRequest is a batch of answered questions.
type SubmitQuestionScoresRequest struct {
	AssessmentKind *int16                 `json:"assessment_kind"`
	Questions      []QuestionEntryRequest `json:"questions" validate:"required,min=1,max=1000,dive"`
}

// QuestionSubmissionResponse describes a stored batch.
type QuestionSubmissionResponse struct {
	Message        string                `json:"message"`
	FinalScore     float64               `json:"final_score"`
	AssessmentKind models.AssessmentKind `json:"assessment_kind"`
	QuestionCount  int                   `json:"question_count"`
}

// QuestionScoreService records per-question answers and rolls them up into
// the term score.
type QuestionScoreService struct {
	repo      questionScoreRepository
	skills    skillResolver
	metrics   scoreMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuestionScoreService constructs a QuestionScoreService.
func NewQuestionScoreService(repo questionScoreRepository, skills skillResolver, metrics scoreMetrics, validate *validator.Validate, logger *zap.Logger) *QuestionScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionScoreService{repo: repo, skills: skills, metrics: metrics, validator: validate, logger: logger}
}

// Submit stores a question batch. pathKind, when set, overrides the kind in
// the body. Unknown skill codes reject the whole batch before any write.
func (s *QuestionScoreService) Submit(ctx context.Context, studentID, termID int64, pathKind *models.AssessmentKind, req SubmitQuestionScoresRequest) (*QuestionSubmissionResponse, error) {
	if len(req.Questions) == 0 {
		return nil, invalid("questions must not be empty")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid question payload")
	}

	kind, err := resolveKind(pathKind, req.AssessmentKind)
	if err != nil {
		return nil, err
	}

	entries, codes, spellings := buildEntries(req.Questions)
	skillIDs, err := s.resolveSkills(ctx, codes, spellings)
	if err != nil {
		return nil, err
	}

	batch := models.QuestionBatch{
		StudentID: studentID,
		TermID:    termID,
		Kind:      kind,
		Questions: entries,
		SkillIDs:  skillIDs,
	}
	result, err := s.repo.Submit(ctx, batch, s.normalize)
	if err != nil {
		s.record("question", "error")
		if errors.Is(err, models.ErrScoreOutOfRange) {
			return nil, invalid("final score exceeds the storable range")
		}
		return nil, writeError(err, "enrollment not found", "failed to save question scores")
	}
	s.record("question", "created")
	s.logger.Info("question scores saved",
		zap.Int64("student_id", studentID),
		zap.Int64("term_id", termID),
		zap.Stringer("kind", kind),
		zap.Int("question_count", result.QuestionCount),
		zap.Float64("final_score", result.FinalScore),
	)

	return &QuestionSubmissionResponse{
		Message:        "question scores saved",
		FinalScore:     result.FinalScore,
		AssessmentKind: kind,
		QuestionCount:  result.QuestionCount,
	}, nil
}

// Get returns the stored questions of a student term with the recomputed
// total, the latest kind and the exercised skills.
func (s *QuestionScoreService) Get(ctx context.Context, studentID, termID int64) (*models.QuestionScoreSummary, error) {
	rows, err := s.repo.ListByStudentTerm(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load question scores")
	}
	if len(rows) == 0 {
		return nil, notFound("no question scores for student and term")
	}

	questions := dedupeQuestions(rows)
	var sum float64
	for _, q := range questions {
		sum += q.Score
	}

	kind, err := s.repo.MaxAssessmentKind(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessment kind")
	}
	skills, err := s.skills.ListByStudentTerm(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load skills")
	}
	if skills == nil {
		skills = []models.Skill{}
	}

	return &models.QuestionScoreSummary{
		StudentID:      studentID,
		TermID:         termID,
		AssessmentKind: kind,
		Questions:      questions,
		Total:          s.normalize(sum, len(questions)),
		Skills:         skills,
	}, nil
}

// normalize scales 12 and 24 question assessments onto the 0-10 range and
// rounds to two decimals.
func (s *QuestionScoreService) normalize(sum float64, count int) float64 {
	switch count {
	case 12:
		sum = sum * 10 / 12
	case 24:
		sum = sum * 10 / 24
	case 10:
	default:
		s.logger.Warn("unexpected question count, score not normalized",
			zap.Int("question_count", count),
			zap.Float64("raw_total", sum),
		)
	}
	return roundScore(sum)
}

// resolveSkills maps normalized codes to skill ids. Unknown codes are
// reported with the spellings the client submitted.
func (s *QuestionScoreService) resolveSkills(ctx context.Context, codes []string, spellings map[string][]string) ([]int64, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	found, err := s.skills.ResolveCodes(ctx, codes)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to resolve skills")
	}
	ids := make([]int64, 0, len(codes))
	var unknown []string
	for _, code := range codes {
		id, ok := found[code]
		if !ok {
			unknown = append(unknown, spellings[code]...)
			continue
		}
		ids = append(ids, id)
	}
	if len(unknown) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrUnknownSkills, "unknown skill codes", unknown)
	}
	return ids, nil
}

func (s *QuestionScoreService) record(variant, result string) {
	if s.metrics != nil {
		s.metrics.RecordScoreSubmission(variant, result)
	}
}

func resolveKind(pathKind *models.AssessmentKind, bodyKind *int16) (models.AssessmentKind, error) {
	if pathKind != nil {
		return *pathKind, nil
	}
	if bodyKind == nil {
		return 0, invalid("assessment_kind is required")
	}
	kind := models.AssessmentKind(*bodyKind)
	if !kind.Valid() {
		return 0, invalid("assessment_kind must be 0 or 1")
	}
	return kind, nil
}

// buildEntries computes each question's contribution, keeping the last entry
// per question number, and collects the distinct upper-cased skill codes
// along with every distinct spelling submitted for each code.
func buildEntries(questions []QuestionEntryRequest) ([]models.QuestionEntry, []string, map[string][]string) {
	byNumber := make(map[int]int, len(questions))
	entries := make([]models.QuestionEntry, 0, len(questions))
	spellings := make(map[string][]string)
	seenSpelling := make(map[string]struct{})
	var codes []string

	for _, q := range questions {
		weight := 1.0
		if q.Weight != nil {
			weight = *q.Weight
		}
		entry := models.QuestionEntry{
			QuestionNumber: q.QuestionNumber,
			Score:          contribution(q, weight),
			Weight:         weight,
		}
		if idx, ok := byNumber[q.QuestionNumber]; ok {
			entries[idx] = entry
		} else {
			byNumber[q.QuestionNumber] = len(entries)
			entries = append(entries, entry)
		}

		code := strings.ToUpper(strings.TrimSpace(q.Skill))
		if code == "" {
			continue
		}
		if _, ok := spellings[code]; !ok {
			codes = append(codes, code)
		}
		if _, ok := seenSpelling[q.Skill]; !ok {
			seenSpelling[q.Skill] = struct{}{}
			spellings[code] = append(spellings[code], q.Skill)
		}
	}
	return entries, codes, spellings
}

func contribution(q QuestionEntryRequest, weight float64) float64 {
	if q.Score != nil {
		return *q.Score * weight
	}
	if isCorrect(q) {
		return weight
	}
	return 0
}

func isCorrect(q QuestionEntryRequest) bool {
	if q.Correct != nil && *q.Correct {
		return true
	}
	_, ok := correctStatuses[strings.ToLower(strings.TrimSpace(q.Status))]
	return ok
}

// dedupeQuestions keeps the last stored row per question number, ordered by
// number.
func dedupeQuestions(rows []models.QuestionScore) []models.QuestionScore {
	latest := make(map[int]models.QuestionScore, len(rows))
	for _, row := range rows {
		latest[row.QuestionNumber] = row
	}
	out := make([]models.QuestionScore, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out
}
