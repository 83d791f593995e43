package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type mockScoreRepo struct {
	existing   map[[2]int64]bool
	submitErr  error
	kindCalls  []models.AssessmentKind
	updated    []float64
	updateKind *models.AssessmentKind
	updateErr  error
}

func (m *mockScoreRepo) SubmitHolistic(ctx context.Context, studentID, termID int64, score float64) (bool, error) {
	if m.submitErr != nil {
		return false, m.submitErr
	}
	if m.existing == nil {
		m.existing = map[[2]int64]bool{}
	}
	key := [2]int64{studentID, termID}
	created := !m.existing[key]
	m.existing[key] = true
	return created, nil
}

func (m *mockScoreRepo) SubmitKind(ctx context.Context, studentID, termID int64, kind models.AssessmentKind, score float64) (bool, error) {
	m.kindCalls = append(m.kindCalls, kind)
	return true, nil
}

func (m *mockScoreRepo) UpdateByEnrollment(ctx context.Context, enrollmentID int64, kind *models.AssessmentKind, score float64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, score)
	m.updateKind = kind
	return nil
}

type mockEnrollments struct {
	enrollment *models.TermEnrollment
}

func (m *mockEnrollments) FindByStudentAndTerm(ctx context.Context, studentID, termID int64) (*models.TermEnrollment, error) {
	if m.enrollment == nil {
		return nil, sql.ErrNoRows
	}
	return m.enrollment, nil
}

type mockMembership struct {
	belongs bool
}

func (m *mockMembership) BelongsToClass(ctx context.Context, subjectID, classID int64) (bool, error) {
	return m.belongs, nil
}

type recordedSubmission struct {
	variant string
	outcome string
}

type mockScoreMetrics struct {
	calls []recordedSubmission
}

func (m *mockScoreMetrics) RecordScoreSubmission(variant, outcome string) {
	m.calls = append(m.calls, recordedSubmission{variant, outcome})
}

func scoreOf(v float64) *ScoreValue {
	s := ScoreValue(v)
	return &s
}

func TestScoreValueUnmarshal(t *testing.T) {
	var req SubmitScoreRequest
	require.NoError(t, json.Unmarshal([]byte(`{"score": 7.5}`), &req))
	assert.Equal(t, 7.5, float64(*req.Score))

	req = SubmitScoreRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"score": " 8.25 "}`), &req))
	assert.Equal(t, 8.25, float64(*req.Score))

	req = SubmitScoreRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.Nil(t, req.Score)

	assert.Error(t, json.Unmarshal([]byte(`{"score": "abc"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"score": true}`), &req))

	for _, raw := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Infinity"`, `"1e400"`} {
		req = SubmitScoreRequest{}
		assert.Error(t, json.Unmarshal([]byte(`{"score": `+raw+`}`), &req), raw)
	}
}

func TestScoreServiceSubmitHolisticCreatedThenUpdated(t *testing.T) {
	repo := &mockScoreRepo{}
	metrics := &mockScoreMetrics{}
	svc := NewScoreService(repo, &mockEnrollments{}, &mockMembership{}, metrics, nil, nil)

	created, err := svc.SubmitHolistic(context.Background(), 1, 2, SubmitScoreRequest{Score: scoreOf(7.5)})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SubmitHolistic(context.Background(), 1, 2, SubmitScoreRequest{Score: scoreOf(8)})
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []recordedSubmission{{"holistic", "created"}, {"holistic", "updated"}}, metrics.calls)
}

func TestScoreServiceSubmitHolisticValidation(t *testing.T) {
	repo := &mockScoreRepo{}
	svc := NewScoreService(repo, &mockEnrollments{}, &mockMembership{}, nil, nil, nil)

	for name, req := range map[string]SubmitScoreRequest{
		"missing":  {},
		"negative": {Score: scoreOf(-1)},
		"too high": {Score: scoreOf(10.5)},
		"nan":      {Score: scoreOf(math.NaN())},
		"inf":      {Score: scoreOf(math.Inf(1))},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SubmitHolistic(context.Background(), 1, 2, req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
	assert.Empty(t, repo.existing)
}

func TestScoreServiceSubmitHolisticUnknownStudent(t *testing.T) {
	repo := &mockScoreRepo{submitErr: &pq.Error{Code: "23503"}}
	metrics := &mockScoreMetrics{}
	svc := NewScoreService(repo, &mockEnrollments{}, &mockMembership{}, metrics, nil, nil)

	_, err := svc.SubmitHolistic(context.Background(), 1, 2, SubmitScoreRequest{Score: scoreOf(5)})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.Equal(t, []recordedSubmission{{"holistic", "error"}}, metrics.calls)
}

func TestScoreServiceUpdate(t *testing.T) {
	repo := &mockScoreRepo{}
	enrollments := &mockEnrollments{enrollment: &models.TermEnrollment{ID: 9, StudentID: 1, TermID: 2}}
	svc := NewScoreService(repo, enrollments, &mockMembership{}, nil, nil, nil)
	kind := models.AssessmentMakeUp

	require.NoError(t, svc.Update(context.Background(), 1, 2, &kind, SubmitScoreRequest{Score: scoreOf(6)}))
	assert.Equal(t, []float64{6}, repo.updated)
	require.NotNil(t, repo.updateKind)
	assert.Equal(t, models.AssessmentMakeUp, *repo.updateKind)
}

func TestScoreServiceUpdateNotFound(t *testing.T) {
	svc := NewScoreService(&mockScoreRepo{}, &mockEnrollments{}, &mockMembership{}, nil, nil, nil)
	err := svc.Update(context.Background(), 1, 2, nil, SubmitScoreRequest{Score: scoreOf(6)})
	require.Error(t, err)
	assert.Equal(t, "enrollment not found for student and term", appErrors.FromError(err).Message)

	repo := &mockScoreRepo{updateErr: sql.ErrNoRows}
	enrollments := &mockEnrollments{enrollment: &models.TermEnrollment{ID: 9}}
	svc = NewScoreService(repo, enrollments, &mockMembership{}, nil, nil, nil)
	err = svc.Update(context.Background(), 1, 2, nil, SubmitScoreRequest{Score: scoreOf(6)})
	require.Error(t, err)
	assert.Equal(t, "score not found for student and term", appErrors.FromError(err).Message)
}

func TestScoreServiceSubmitForSubject(t *testing.T) {
	repo := &mockScoreRepo{}
	kind := int16(1)

	svc := NewScoreService(repo, &mockEnrollments{}, &mockMembership{belongs: false}, nil, nil, nil)
	_, err := svc.SubmitForSubject(context.Background(), 1, 2, 3, 4, SubjectScoreRequest{Score: scoreOf(9), AssessmentKind: &kind})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.Empty(t, repo.kindCalls)

	svc = NewScoreService(repo, &mockEnrollments{}, &mockMembership{belongs: true}, nil, nil, nil)
	created, err := svc.SubmitForSubject(context.Background(), 1, 2, 3, 4, SubjectScoreRequest{Score: scoreOf(9), AssessmentKind: &kind})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []models.AssessmentKind{models.AssessmentMakeUp}, repo.kindCalls)

	bad := int16(2)
	_, err = svc.SubmitForSubject(context.Background(), 1, 2, 3, 4, SubjectScoreRequest{Score: scoreOf(9), AssessmentKind: &bad})
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}
