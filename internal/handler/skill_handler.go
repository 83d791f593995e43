package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type skillService interface {
	List(ctx context.Context) ([]models.Skill, error)
	Get(ctx context.Context, id int64) (*models.Skill, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentSkill, error)
	Create(ctx context.Context, req service.UpsertSkillRequest) (*models.Skill, error)
	CreateIfNotExists(ctx context.Context, req service.UpsertSkillRequest) (*models.Skill, bool, error)
	Update(ctx context.Context, id int64, req service.UpsertSkillRequest) (*models.Skill, error)
	Delete(ctx context.Context, id int64) error
}

type skillReports interface {
	SkillStats(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (*models.SkillStats, error)
	StudentSkillStats(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.StudentSkillStats, error)
	TopSkills(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.SkillCount, error)
	WeakestSkills(ctx context.Context, classID, termID int64) ([]models.SkillCount, error)
}

// SkillHandler exposes the skill catalog and skill statistics.
type SkillHandler struct {
	skills  skillService
	reports skillReports
}

// NewSkillHandler constructs SkillHandler.
func NewSkillHandler(skills skillService, reports skillReports) *SkillHandler {
	return &SkillHandler{skills: skills, reports: reports}
}

// List godoc
// @Summary List skills
// @Tags Skills
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /skills [get]
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skills.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skills, nil)
}

// Get godoc
// @Summary Get skill
// @Tags Skills
// @Produce json
// @Param id path int true "Skill ID"
// @Success 200 {object} response.Envelope
// @Router /skills/{id} [get]
func (h *SkillHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	skill, err := h.skills.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skill, nil)
}

// ListByStudent godoc
// @Summary List every skill a student exercised
// @Tags Skills
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /skills/student/{studentId} [get]
func (h *SkillHandler) ListByStudent(c *gin.Context) {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	skills, err := h.skills.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skills, nil)
}

// Create godoc
// @Summary Create skill
// @Tags Skills
// @Accept json
// @Produce json
// @Param payload body service.UpsertSkillRequest true "Skill payload"
// @Success 201 {object} response.Envelope
// @Router /skills [post]
func (h *SkillHandler) Create(c *gin.Context) {
	var req service.UpsertSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid skill payload"))
		return
	}
	skill, err := h.skills.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, skill)
}

// CreateIfNotExists godoc
// @Summary Create skill unless its code exists
// @Description The code is stored upper-cased. Returns 200 with the existing skill or 201 with the new one.
// @Tags Skills
// @Accept json
// @Produce json
// @Param payload body service.UpsertSkillRequest true "Skill payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /skills/create-if-not-exists [post]
func (h *SkillHandler) CreateIfNotExists(c *gin.Context) {
	var req service.UpsertSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid skill payload"))
		return
	}
	skill, created, err := h.skills.CreateIfNotExists(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, skill)
		return
	}
	response.JSON(c, http.StatusOK, skill, nil)
}

// Update godoc
// @Summary Update skill
// @Tags Skills
// @Accept json
// @Produce json
// @Param id path int true "Skill ID"
// @Param payload body service.UpsertSkillRequest true "Skill payload"
// @Success 200 {object} response.Envelope
// @Router /skills/{id} [put]
func (h *SkillHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpsertSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid skill payload"))
		return
	}
	skill, err := h.skills.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skill, nil)
}

// Delete godoc
// @Summary Delete skill
// @Tags Skills
// @Param id path int true "Skill ID"
// @Success 200 {object} response.Envelope
// @Router /skills/{id} [delete]
func (h *SkillHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.skills.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "skill deleted")
}

// Stats godoc
// @Summary Most and least exercised skills of a class term
// @Tags Skills
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param kind path int true "Assessment kind (0 or 1)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /skills/stats/{classId}/{termId}/{kind} [get]
func (h *SkillHandler) Stats(c *gin.Context) {
	classID, termID, kind, err := classTermKind(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.reports.SkillStats(c.Request.Context(), classID, termID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// StudentStats godoc
// @Summary Most and least exercised skill per student
// @Tags Skills
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param kind path int true "Assessment kind (0 or 1)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /skills/students/{classId}/{termId}/{kind} [get]
func (h *SkillHandler) StudentStats(c *gin.Context) {
	classID, termID, kind, err := classTermKind(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.reports.StudentSkillStats(c.Request.Context(), classID, termID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Top5 godoc
// @Summary Five most exercised skills
// @Tags Skills
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Param kind path int true "Assessment kind (0 or 1)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /skills/top5/{classId}/{termId}/{kind} [get]
func (h *SkillHandler) Top5(c *gin.Context) {
	classID, termID, kind, err := classTermKind(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.reports.TopSkills(c.Request.Context(), classID, termID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// Top5Errors godoc
// @Summary Five least exercised skills
// @Tags Skills
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /skills/top5-errors/{classId}/{termId} [get]
func (h *SkillHandler) Top5Errors(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.reports.WeakestSkills(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

func classTermKind(c *gin.Context) (int64, int64, models.AssessmentKind, error) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		return 0, 0, 0, err
	}
	kind, err := parseKind(c.Param("kind"))
	if err != nil {
		return 0, 0, 0, err
	}
	return ids[0], ids[1], kind, nil
}
