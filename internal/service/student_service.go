package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Student, error)
	ListByTermAndTeacher(ctx context.Context, termID, teacherID int64) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// UpsertStudentRequest is the payload for creating or updating a student.
type UpsertStudentRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	BirthDate *string `json:"birth_date"`
	ClassID   *int64  `json:"class_id" validate:"omitempty,gt=0"`
}

// StudentService handles student business logic.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ListByClass returns the students of a class; an empty class is a 404.
func (s *StudentService) ListByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	students, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	if len(students) == 0 {
		return nil, notFound("no students found for class")
	}
	return students, nil
}

// ListByTermAndTeacher returns students enrolled in the term under the teacher.
func (s *StudentService) ListByTermAndTeacher(ctx context.Context, termID, teacherID int64) ([]models.Student, error) {
	students, err := s.repo.ListByTermAndTeacher(ctx, termID, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	if len(students) == 0 {
		return nil, notFound("no students found for term and teacher")
	}
	return students, nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create adds a student.
func (s *StudentService) Create(ctx context.Context, req UpsertStudentRequest) (*models.Student, error) {
	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, writeError(err, "student not found", "failed to create student")
	}
	return student, nil
}

// Update modifies a student.
func (s *StudentService) Update(ctx context.Context, id int64, req UpsertStudentRequest) (*models.Student, error) {
	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, writeError(err, "student not found", "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "student not found", "failed to delete student")
	}
	return nil
}

func (s *StudentService) buildStudent(req UpsertStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	return &models.Student{
		Name:      strings.TrimSpace(req.Name),
		BirthDate: birthDate,
		ClassID:   req.ClassID,
	}, nil
}
