package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

const (
	msgScoreCreated = "score created"
	msgScoreUpdated = "score updated"
)

type scoreService interface {
	SubmitHolistic(ctx context.Context, studentID, termID int64, req service.SubmitScoreRequest) (bool, error)
	SubmitForSubject(ctx context.Context, studentID, termID, subjectID, classID int64, req service.SubjectScoreRequest) (bool, error)
	Update(ctx context.Context, studentID, termID int64, kind *models.AssessmentKind, req service.SubmitScoreRequest) error
}

type scoreReports interface {
	ClassAverage(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (float64, error)
	CountStudentsWithScores(ctx context.Context, classID, termID int64) (int, error)
	ScoreChart(ctx context.Context, classID, termID int64) ([]models.ScoreBand, error)
	StudentScores(ctx context.Context, studentID int64) ([]models.StudentTermScore, error)
	StudentSubjectScores(ctx context.Context, studentID, termID, classID int64) ([]models.SubjectScore, error)
	StudentSubjectScore(ctx context.Context, studentID, termID, subjectID, classID int64) (*models.SubjectScore, error)
	ClassRoster(ctx context.Context, classID, termID, subjectID int64, kind models.AssessmentKind) ([]models.RosterScore, error)
	ScoresByKind(ctx context.Context, kind models.AssessmentKind, classID, termID, subjectID int64) ([]models.KindScore, error)
}

type scoreExporter interface {
	ScoreSheet(ctx context.Context, classID, termID int64, format models.ExportFormat) (*service.ExportFile, error)
}

// AverageBody is the class average payload.
type AverageBody struct {
	Average float64 `json:"average"`
}

// TotalBody is the students-with-scores count payload.
type TotalBody struct {
	Total int `json:"total"`
}

// ScoreHandler exposes score submission and score reporting endpoints.
type ScoreHandler struct {
	scores   scoreService
	reports  scoreReports
	exporter scoreExporter
}

// NewScoreHandler constructs ScoreHandler.
func NewScoreHandler(scores scoreService, reports scoreReports, exporter scoreExporter) *ScoreHandler {
	return &ScoreHandler{scores: scores, reports: reports, exporter: exporter}
}

// Submit godoc
// @Summary Record a holistic score
// @Description Updates the existing score of the student and term or creates a regular one.
// @Tags Scores
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param payload body service.SubmitScoreRequest true "Score between 0 and 10"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scores/{studentId}/{termId} [post]
func (h *ScoreHandler) Submit(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "score must be numeric"))
		return
	}
	created, err := h.scores.SubmitHolistic(c.Request.Context(), ids[0], ids[1], req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondSaved(c, created)
}

// SubmitForSubject godoc
// @Summary Record a score of an explicit kind for a subject of a class
// @Tags Scores
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param subjectId path int true "Subject ID"
// @Param classId path int true "Class ID"
// @Param payload body service.SubjectScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/{studentId}/{termId}/subject/{subjectId}/class/{classId} [post]
func (h *ScoreHandler) SubmitForSubject(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId", "subjectId", "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubjectScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid score payload"))
		return
	}
	created, err := h.scores.SubmitForSubject(c.Request.Context(), ids[0], ids[1], ids[2], ids[3], req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondSaved(c, created)
}

// Update godoc
// @Summary Overwrite existing scores
// @Description Never creates a score. The optional kind restricts the update.
// @Tags Scores
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param kind path int false "Assessment kind (0 or 1)"
// @Param payload body service.SubmitScoreRequest true "Score between 0 and 10"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/{studentId}/{termId}/{kind} [put]
func (h *ScoreHandler) Update(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var kind *models.AssessmentKind
	if raw := c.Param("kind"); raw != "" {
		k, err := parseKind(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		kind = &k
	}
	var req service.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "score must be numeric"))
		return
	}
	if err := h.scores.Update(c.Request.Context(), ids[0], ids[1], kind, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, msgScoreUpdated)
}

// Average godoc
// @Summary Class average for a kind
// @Tags Scores
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param kind path int true "Assessment kind (0 or 1)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/average/{classId}/{termId}/{kind} [get]
func (h *ScoreHandler) Average(c *gin.Context) {
	classID, termID, kind, err := classTermKind(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	avg, err := h.reports.ClassAverage(c.Request.Context(), classID, termID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, AverageBody{Average: avg}, nil)
}

// Total godoc
// @Summary Count students with a score
// @Tags Scores
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /scores/total/{classId}/{termId} [get]
func (h *ScoreHandler) Total(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	total, err := h.reports.CountStudentsWithScores(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, TotalBody{Total: total}, nil)
}

// Chart godoc
// @Summary Score distribution bands
// @Tags Scores
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /scores/chart/{classId}/{termId} [get]
func (h *ScoreHandler) Chart(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	bands, err := h.reports.ScoreChart(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}

// ByStudent godoc
// @Summary Every score of a student
// @Tags Scores
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /scores/student/{studentId} [get]
func (h *ScoreHandler) ByStudent(c *gin.Context) {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	scores, err := h.reports.StudentScores(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// ByStudentClass godoc
// @Summary Per-subject scores of a student in a class term
// @Tags Scores
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/student/{studentId}/term/{termId}/class/{classId} [get]
func (h *ScoreHandler) ByStudentClass(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId", "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	scores, err := h.reports.StudentSubjectScores(c.Request.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// ByStudentSubject godoc
// @Summary One subject score of a student
// @Tags Scores
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param subjectId path int true "Subject ID"
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/student/{studentId}/term/{termId}/subject/{subjectId}/class/{classId} [get]
func (h *ScoreHandler) ByStudentSubject(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId", "subjectId", "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	score, err := h.reports.StudentSubjectScore(c.Request.Context(), ids[0], ids[1], ids[2], ids[3])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}

// ClassRoster godoc
// @Summary Class roster with nullable scores
// @Tags Scores
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param subjectId path int true "Subject ID"
// @Param kind query int false "Assessment kind (default 0)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/class/{classId}/term/{termId}/subject/{subjectId} [get]
func (h *ScoreHandler) ClassRoster(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId", "subjectId")
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := parseKind(c.DefaultQuery("kind", "0"))
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.reports.ClassRoster(c.Request.Context(), ids[0], ids[1], ids[2], kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// ByKind godoc
// @Summary Students holding a score of a kind
// @Tags Scores
// @Produce json
// @Param kind path int true "Assessment kind (0 or 1)"
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param subjectId path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/kind/{kind}/class/{classId}/term/{termId}/subject/{subjectId} [get]
func (h *ScoreHandler) ByKind(c *gin.Context) {
	kind, err := parseKind(c.Param("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ids, err := pathIDs(c, "classId", "termId", "subjectId")
	if err != nil {
		response.Error(c, err)
		return
	}
	scores, err := h.reports.ScoresByKind(c.Request.Context(), kind, ids[0], ids[1], ids[2])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// Export godoc
// @Summary Download the class score sheet
// @Tags Scores
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param format query string false "csv, pdf or xlsx (default csv)"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /scores/export/{classId}/{termId} [get]
func (h *ScoreHandler) Export(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))
	file, err := h.exporter.ScoreSheet(c.Request.Context(), ids[0], ids[1], format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

func respondSaved(c *gin.Context, created bool) {
	if created {
		response.Message(c, http.StatusCreated, msgScoreCreated)
		return
	}
	response.Message(c, http.StatusOK, msgScoreUpdated)
}
