package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type questionScoreService interface {
	Submit(ctx context.Context, studentID, termID int64, pathKind *models.AssessmentKind, req service.SubmitQuestionScoresRequest) (*service.QuestionSubmissionResponse, error)
	Get(ctx context.Context, studentID, termID int64) (*models.QuestionScoreSummary, error)
}

// QuestionScoreHandler exposes per-question score endpoints.
type QuestionScoreHandler struct {
	service questionScoreService
}

// NewQuestionScoreHandler constructs QuestionScoreHandler.
func NewQuestionScoreHandler(service questionScoreService) *QuestionScoreHandler {
	return &QuestionScoreHandler{service: service}
}

// Submit godoc
// @Summary Record per-question answers
// @Description Stores every question, records the referenced skills and rolls the batch up into the term score. A kind in the path overrides the body.
// @Tags QuestionScores
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Param kind path int false "Assessment kind (0 or 1)"
// @Param payload body service.SubmitQuestionScoresRequest true "Question batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /question-scores/{studentId}/{termId} [post]
func (h *QuestionScoreHandler) Submit(c *gin.Context) {
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
	var req service.SubmitQuestionScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid question payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), ids[0], ids[1], kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Stored question scores of a student term
// @Tags QuestionScores
// @Produce json
// @Param studentId path int true "Student ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /question-scores/{studentId}/{termId} [get]
func (h *QuestionScoreHandler) Get(c *gin.Context) {
	ids, err := pathIDs(c, "studentId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Get(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
