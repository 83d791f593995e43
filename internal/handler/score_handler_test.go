package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type scoreServiceMock struct {
	created      bool
	err          error
	submitCalled bool
	lastScore    float64
	lastKind     *models.AssessmentKind
	lastIDs      []int64
}

func (m *scoreServiceMock) SubmitHolistic(ctx context.Context, studentID, termID int64, req service.SubmitScoreRequest) (bool, error) {
	m.submitCalled = true
	m.lastIDs = []int64{studentID, termID}
	if req.Score != nil {
		m.lastScore = float64(*req.Score)
	}
	return m.created, m.err
}

func (m *scoreServiceMock) SubmitForSubject(ctx context.Context, studentID, termID, subjectID, classID int64, req service.SubjectScoreRequest) (bool, error) {
	m.submitCalled = true
	m.lastIDs = []int64{studentID, termID, subjectID, classID}
	return m.created, m.err
}

func (m *scoreServiceMock) Update(ctx context.Context, studentID, termID int64, kind *models.AssessmentKind, req service.SubmitScoreRequest) error {
	m.lastKind = kind
	return m.err
}

type scoreReportsMock struct {
	average    float64
	err        error
	rosterKind models.AssessmentKind
}

func (m *scoreReportsMock) ClassAverage(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (float64, error) {
	return m.average, m.err
}

func (m *scoreReportsMock) CountStudentsWithScores(ctx context.Context, classID, termID int64) (int, error) {
	return 4, nil
}

func (m *scoreReportsMock) ScoreChart(ctx context.Context, classID, termID int64) ([]models.ScoreBand, error) {
	return []models.ScoreBand{{Band: models.BandHigh, Count: 2}}, nil
}

func (m *scoreReportsMock) StudentScores(ctx context.Context, studentID int64) ([]models.StudentTermScore, error) {
	return []models.StudentTermScore{}, nil
}

func (m *scoreReportsMock) StudentSubjectScores(ctx context.Context, studentID, termID, classID int64) ([]models.SubjectScore, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no scores")
}

func (m *scoreReportsMock) StudentSubjectScore(ctx context.Context, studentID, termID, subjectID, classID int64) (*models.SubjectScore, error) {
	return &models.SubjectScore{SubjectID: subjectID, Score: 7}, nil
}

func (m *scoreReportsMock) ClassRoster(ctx context.Context, classID, termID, subjectID int64, kind models.AssessmentKind) ([]models.RosterScore, error) {
	m.rosterKind = kind
	return []models.RosterScore{{StudentID: 1, StudentName: "Ana"}}, nil
}

func (m *scoreReportsMock) ScoresByKind(ctx context.Context, kind models.AssessmentKind, classID, termID, subjectID int64) ([]models.KindScore, error) {
	return nil, nil
}

type exporterMock struct {
	format models.ExportFormat
}

func (m *exporterMock) ScoreSheet(ctx context.Context, classID, termID int64, format models.ExportFormat) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "scores.csv", ContentType: "text/csv", Body: []byte("a,b\n")}, nil
}

func newScoreRouter(h *ScoreHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	scores := r.Group("/scores")
	scores.POST("/:studentId/:termId", h.Submit)
	scores.POST("/:studentId/:termId/subject/:subjectId/class/:classId", h.SubmitForSubject)
	scores.PUT("/:studentId/:termId", h.Update)
	scores.PUT("/:studentId/:termId/:kind", h.Update)
	scores.GET("/average/:classId/:termId/:kind", h.Average)
	scores.GET("/total/:classId/:termId", h.Total)
	scores.GET("/student/:studentId/term/:termId/class/:classId", h.ByStudentClass)
	scores.GET("/class/:classId/term/:termId/subject/:subjectId", h.ClassRoster)
	scores.GET("/export/:classId/:termId", h.Export)
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestScoreHandlerSubmitCreated(t *testing.T) {
	svc := &scoreServiceMock{created: true}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPost, "/scores/3/4", `{"score": "7.5"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "score created", body["data"].(map[string]interface{})["message"])
	assert.Equal(t, []int64{3, 4}, svc.lastIDs)
	assert.Equal(t, 7.5, svc.lastScore)
}

func TestScoreHandlerSubmitUpdated(t *testing.T) {
	svc := &scoreServiceMock{created: false}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPost, "/scores/3/4", `{"score": 8}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "score updated", body["data"].(map[string]interface{})["message"])
}

func TestScoreHandlerSubmitRejectsNonNumeric(t *testing.T) {
	svc := &scoreServiceMock{}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPost, "/scores/3/4", `{"score": "seven"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.submitCalled)

	w = perform(r, http.MethodPost, "/scores/abc/4", `{"score": 7}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.submitCalled)
}

func TestScoreHandlerSubmitForSubjectRoute(t *testing.T) {
	svc := &scoreServiceMock{created: true}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPost, "/scores/1/2/subject/3/class/4", `{"score": 9, "assessment_kind": 1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []int64{1, 2, 3, 4}, svc.lastIDs)
}

func TestScoreHandlerUpdateWithKind(t *testing.T) {
	svc := &scoreServiceMock{}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPut, "/scores/1/2/1", `{"score": 6}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastKind)
	assert.Equal(t, models.AssessmentMakeUp, *svc.lastKind)

	w = perform(r, http.MethodPut, "/scores/1/2", `{"score": 6}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastKind)

	w = perform(r, http.MethodPut, "/scores/1/2/5", `{"score": 6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreHandlerUpdateRejectsWrappedKind(t *testing.T) {
	svc := &scoreServiceMock{}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	for _, kind := range []string{"65536", "65537"} {
		w := perform(r, http.MethodPut, "/scores/1/2/"+kind, `{"score": 6}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, kind)
	}
	assert.Nil(t, svc.lastKind)
}

func TestScoreHandlerUpdateNotFound(t *testing.T) {
	svc := &scoreServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "score not found for student and term")}
	r := newScoreRouter(NewScoreHandler(svc, &scoreReportsMock{}, &exporterMock{}))

	w := perform(r, http.MethodPut, "/scores/1/2", `{"score": 6}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScoreHandlerAverage(t *testing.T) {
	reports := &scoreReportsMock{average: 6.67}
	r := newScoreRouter(NewScoreHandler(&scoreServiceMock{}, reports, &exporterMock{}))

	w := perform(r, http.MethodGet, "/scores/average/1/2/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, 6.67, body["data"].(map[string]interface{})["average"])

	reports.err = appErrors.Clone(appErrors.ErrNotFound, "no scores recorded for class and term")
	w = perform(r, http.MethodGet, "/scores/average/1/2/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScoreHandlerReports(t *testing.T) {
	reports := &scoreReportsMock{}
	r := newScoreRouter(NewScoreHandler(&scoreServiceMock{}, reports, &exporterMock{}))

	w := perform(r, http.MethodGet, "/scores/total/1/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.0, decodeEnvelope(t, w)["data"].(map[string]interface{})["total"])

	w = perform(r, http.MethodGet, "/scores/student/1/term/2/class/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodGet, "/scores/class/1/term/2/subject/3?kind=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AssessmentMakeUp, reports.rosterKind)
}

func TestScoreHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	r := newScoreRouter(NewScoreHandler(&scoreServiceMock{}, &scoreReportsMock{}, exporter))

	w := perform(r, http.MethodGet, "/scores/export/1/2?format=XLSX", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ExportXLSX, exporter.format)
	assert.Equal(t, `attachment; filename="scores.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
