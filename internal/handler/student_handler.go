package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Student, error)
	ListByTermAndTeacher(ctx context.Context, termID, teacherID int64) ([]models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, req service.UpsertStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req service.UpsertStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
}

type studentReports interface {
	StudentsWithScores(ctx context.Context, classID, termID int64) ([]models.RosterScore, error)
	StudentTermScores(ctx context.Context, studentID, termID int64) ([]models.StudentTermScore, error)
}

type studentSkills interface {
	ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	reports  studentReports
	skills   studentSkills
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, reports studentReports, skills studentSkills) *StudentHandler {
	return &StudentHandler{students: students, reports: reports, skills: skills}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param class_id query int false "Filter by class"
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "limit", 20),
	}
	if raw := c.Query("class_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ClassID = &id
		}
	}
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ListByClass godoc
// @Summary List students of a class
// @Tags Students
// @Produce json
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/class/{classId} [get]
func (h *StudentHandler) ListByClass(c *gin.Context) {
	classID, err := pathID(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.students.ListByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ListByTermAndTeacher godoc
// @Summary List students enrolled in a term under a teacher
// @Tags Students
// @Produce json
// @Param termId path int true "Term ID"
// @Param teacherId path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/term/{termId}/teacher/{teacherId} [get]
func (h *StudentHandler) ListByTermAndTeacher(c *gin.Context) {
	ids, err := pathIDs(c, "termId", "teacherId")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.students.ListByTermAndTeacher(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// WithScores godoc
// @Summary List class students with their regular score
// @Tags Students
// @Produce json
// @Param classId path int true "Class ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/with-scores/{classId}/{termId} [get]
func (h *StudentHandler) WithScores(c *gin.Context) {
	ids, err := pathIDs(c, "classId", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.reports.StudentsWithScores(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// TermScores godoc
// @Summary List a student's scores in a term
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/scores/{termId} [get]
func (h *StudentHandler) TermScores(c *gin.Context) {
	ids, err := pathIDs(c, "id", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	scores, err := h.reports.StudentTermScores(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// TermSkills godoc
// @Summary List the skills a student exercised in a term
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Param termId path int true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/skills/{termId} [get]
func (h *StudentHandler) TermSkills(c *gin.Context) {
	ids, err := pathIDs(c, "id", "termId")
	if err != nil {
		response.Error(c, err)
		return
	}
	skills, err := h.skills.ListByStudentTerm(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skills, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpsertStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.UpsertStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.UpsertStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpsertStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "student deleted")
}
