package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type mockQuestionRepo struct {
	stored  map[int]float64
	batches []models.QuestionBatch
	rows    []models.QuestionScore
	maxKind *models.AssessmentKind
	err     error
}

func (m *mockQuestionRepo) Submit(ctx context.Context, batch models.QuestionBatch, normalize models.NormalizeFunc) (*models.QuestionSubmission, error) {
	if m.stored == nil {
		m.stored = map[int]float64{}
	}
	m.batches = append(m.batches, batch)
	if m.err != nil {
		return nil, m.err
	}
	for _, q := range batch.Questions {
		m.stored[q.QuestionNumber] = q.Score
	}
	var sum float64
	for _, v := range m.stored {
		sum += v
	}
	return &models.QuestionSubmission{
		TermEnrollmentID: 1,
		RawTotal:         sum,
		QuestionCount:    len(m.stored),
		FinalScore:       normalize(sum, len(m.stored)),
	}, nil
}

func (m *mockQuestionRepo) ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.QuestionScore, error) {
	return m.rows, nil
}

func (m *mockQuestionRepo) MaxAssessmentKind(ctx context.Context, studentID, termID int64) (*models.AssessmentKind, error) {
	return m.maxKind, nil
}

func correctAnswers(n int) []QuestionEntryRequest {
	out := make([]QuestionEntryRequest, n)
	for i := range out {
		out[i] = QuestionEntryRequest{QuestionNumber: i + 1, Status: "Correto"}
	}
	return out
}

func kindPtr(k int16) *int16 { return &k }

func TestQuestionScoreServiceNormalization(t *testing.T) {
	cases := []struct {
		name      string
		questions int
		want      float64
	}{
		{"ten questions unchanged", 10, 10},
		{"twelve questions scaled", 12, 10},
		{"twenty four questions scaled", 24, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewQuestionScoreService(&mockQuestionRepo{}, &mockSkillRepo{}, nil, nil, nil)
			res, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
				AssessmentKind: kindPtr(0),
				Questions:      correctAnswers(tc.questions),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.FinalScore)
			assert.Equal(t, tc.questions, res.QuestionCount)
		})
	}
}

func TestQuestionScoreServicePartialTwelveRounds(t *testing.T) {
	svc := NewQuestionScoreService(&mockQuestionRepo{}, &mockSkillRepo{}, nil, nil, nil)
	questions := correctAnswers(12)
	for i := 7; i < 12; i++ {
		questions[i].Status = "errado"
	}
	res, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{AssessmentKind: kindPtr(0), Questions: questions})
	require.NoError(t, err)
	assert.Equal(t, 5.83, res.FinalScore)
}

func TestQuestionScoreServiceUnexpectedCountLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewQuestionScoreService(&mockQuestionRepo{}, &mockSkillRepo{}, nil, nil, zap.New(core))

	res, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{AssessmentKind: kindPtr(1), Questions: correctAnswers(7)})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.FinalScore)
	assert.Equal(t, models.AssessmentMakeUp, res.AssessmentKind)
	assert.Equal(t, 1, logs.FilterMessageSnippet("unexpected question count").Len())
}

func TestQuestionScoreServiceContributions(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewQuestionScoreService(repo, &mockSkillRepo{}, nil, nil, nil)
	weight := 2.0
	zero := 0.0
	score := 0.5
	yes := true

	_, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
		AssessmentKind: kindPtr(0),
		Questions: []QuestionEntryRequest{
			{QuestionNumber: 1, Status: "CORRECT", Weight: &weight},
			{QuestionNumber: 2, Correct: &yes},
			{QuestionNumber: 3, Status: "wrong"},
			{QuestionNumber: 4, Score: &score, Weight: &weight},
			{QuestionNumber: 5, Status: "certo", Weight: &zero},
			{QuestionNumber: 2, Status: "wrong"},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)

	got := map[int]float64{}
	for _, q := range repo.batches[0].Questions {
		got[q.QuestionNumber] = q.Score
	}
	assert.Equal(t, map[int]float64{1: 2, 2: 0, 3: 0, 4: 1, 5: 0}, got)
	assert.Len(t, repo.batches[0].Questions, 5)
}

func TestQuestionScoreServiceUnknownSkillsRejectsBatch(t *testing.T) {
	repo := &mockQuestionRepo{}
	skills := &mockSkillRepo{resolved: map[string]int64{"EF06MA01": 3}}
	metrics := &mockScoreMetrics{}
	svc := NewQuestionScoreService(repo, skills, metrics, nil, nil)

	_, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
		AssessmentKind: kindPtr(0),
		Questions: []QuestionEntryRequest{
			{QuestionNumber: 1, Status: "correct", Skill: "ef06ma01"},
			{QuestionNumber: 2, Status: "correct", Skill: " XX99 "},
			{QuestionNumber: 3, Status: "correct", Skill: "xx99"},
		},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnknownSkills.Code, appErr.Code)
	assert.Equal(t, []string{" XX99 ", "xx99"}, appErr.Details)
	assert.Equal(t, []string{"EF06MA01", "XX99"}, skills.resolveArgs)
	assert.Empty(t, repo.batches)
	assert.Empty(t, metrics.calls)
}

func TestQuestionScoreServiceResolvesSkillIDs(t *testing.T) {
	repo := &mockQuestionRepo{}
	skills := &mockSkillRepo{resolved: map[string]int64{"EF06MA01": 3, "EF06MA02": 4}}
	svc := NewQuestionScoreService(repo, skills, nil, nil, nil)

	_, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
		AssessmentKind: kindPtr(0),
		Questions: []QuestionEntryRequest{
			{QuestionNumber: 1, Skill: "EF06MA01"},
			{QuestionNumber: 2, Skill: "EF06MA02"},
			{QuestionNumber: 3, Skill: "ef06ma01"},
			{QuestionNumber: 4, Skill: "  "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, repo.batches[0].SkillIDs)
}

func TestQuestionScoreServiceValidation(t *testing.T) {
	svc := NewQuestionScoreService(&mockQuestionRepo{}, &mockSkillRepo{}, nil, nil, nil)
	negative := -1.0

	cases := map[string]SubmitQuestionScoresRequest{
		"empty list":      {AssessmentKind: kindPtr(0)},
		"missing kind":    {Questions: correctAnswers(1)},
		"bad kind":        {AssessmentKind: kindPtr(3), Questions: correctAnswers(1)},
		"question zero":   {AssessmentKind: kindPtr(0), Questions: []QuestionEntryRequest{{QuestionNumber: 0}}},
		"negative weight": {AssessmentKind: kindPtr(0), Questions: []QuestionEntryRequest{{QuestionNumber: 1, Weight: &negative}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), 1, 2, nil, req)
			require.Error(t, err)
			assert.Equal(t, 400, appErrors.FromError(err).Status)
		})
	}
}

func TestQuestionScoreServicePathKindOverridesBody(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewQuestionScoreService(repo, &mockSkillRepo{}, nil, nil, nil)
	kind := models.AssessmentMakeUp

	res, err := svc.Submit(context.Background(), 1, 2, &kind, SubmitQuestionScoresRequest{AssessmentKind: kindPtr(0), Questions: correctAnswers(10)})
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentMakeUp, res.AssessmentKind)
	assert.Equal(t, models.AssessmentMakeUp, repo.batches[0].Kind)
}

func TestQuestionScoreServiceGet(t *testing.T) {
	kind := models.AssessmentMakeUp
	repo := &mockQuestionRepo{
		maxKind: &kind,
		rows: []models.QuestionScore{
			{ID: 1, QuestionNumber: 1, Score: 1},
			{ID: 2, QuestionNumber: 2, Score: 1},
			{ID: 5, QuestionNumber: 2, Score: 0},
			{ID: 3, QuestionNumber: 3, Score: 1},
		},
	}
	skills := &mockSkillRepo{termSkills: []models.Skill{{ID: 3, Name: "EF06MA01"}}}
	svc := NewQuestionScoreService(repo, skills, nil, nil, nil)

	summary, err := svc.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, summary.Questions, 3)
	assert.Equal(t, int64(5), summary.Questions[1].ID)
	assert.Equal(t, 2.0, summary.Total)
	assert.Equal(t, &kind, summary.AssessmentKind)
	assert.Len(t, summary.Skills, 1)
}

func TestQuestionScoreServiceGetEmpty(t *testing.T) {
	svc := NewQuestionScoreService(&mockQuestionRepo{}, &mockSkillRepo{}, nil, nil, nil)
	_, err := svc.Get(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestQuestionScoreServiceRejectsOversizedWeightAndScore(t *testing.T) {
	over := 11.0
	cases := map[string]QuestionEntryRequest{
		"weight":   {QuestionNumber: 1, Status: "correct", Weight: &over},
		"score":    {QuestionNumber: 1, Score: &over},
		"question": {QuestionNumber: 1001, Status: "correct"},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &mockQuestionRepo{}
			svc := NewQuestionScoreService(repo, &mockSkillRepo{}, nil, nil, nil)
			_, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
				AssessmentKind: kindPtr(0),
				Questions:      []QuestionEntryRequest{q},
			})
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Empty(t, repo.batches)
		})
	}
}

func TestQuestionScoreServiceMapsUnstorableFinalToBadRequest(t *testing.T) {
	repo := &mockQuestionRepo{err: fmt.Errorf("final score 10000.00: %w", models.ErrScoreOutOfRange)}
	svc := NewQuestionScoreService(repo, &mockSkillRepo{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), 1, 2, nil, SubmitQuestionScoresRequest{
		AssessmentKind: kindPtr(0),
		Questions:      correctAnswers(10),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
