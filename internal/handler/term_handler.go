package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type termService interface {
	ListBySubject(ctx context.Context, subjectID int64) ([]models.Term, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Term, error)
	Get(ctx context.Context, id int64) (*models.Term, error)
	Create(ctx context.Context, req service.UpsertTermRequest) (*models.Term, error)
	Update(ctx context.Context, id int64, req service.UpsertTermRequest) (*models.Term, error)
	Delete(ctx context.Context, id int64) error
}

// TermHandler handles term endpoints.
type TermHandler struct {
	terms termService
}

// NewTermHandler constructs TermHandler.
func NewTermHandler(terms termService) *TermHandler {
	return &TermHandler{terms: terms}
}

// Get godoc
// @Summary Get term
// @Tags Terms
// @Produce json
// @Param id path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	term, err := h.terms.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// ListBySubject godoc
// @Summary List terms of a subject
// @Tags Terms
// @Produce json
// @Param subjectId path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /terms/subject/{subjectId} [get]
func (h *TermHandler) ListBySubject(c *gin.Context) {
	subjectID, err := pathID(c, "subjectId")
	if err != nil {
		response.Error(c, err)
		return
	}
	terms, err := h.terms.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// ListByClass godoc
// @Summary List terms of every subject of a class
// @Tags Terms
// @Produce json
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /terms/class/{classId} [get]
func (h *TermHandler) ListByClass(c *gin.Context) {
	classID, err := pathID(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	terms, err := h.terms.ListByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// Create godoc
// @Summary Create term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body service.UpsertTermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Router /terms [post]
func (h *TermHandler) Create(c *gin.Context) {
	var req service.UpsertTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid term payload"))
		return
	}
	term, err := h.terms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// Update godoc
// @Summary Update term
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path int true "Term ID"
// @Param payload body service.UpsertTermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [put]
func (h *TermHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpsertTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid term payload"))
		return
	}
	term, err := h.terms.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Delete godoc
// @Summary Delete term
// @Tags Terms
// @Param id path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [delete]
func (h *TermHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.terms.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "term deleted")
}
