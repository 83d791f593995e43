package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.ClassDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.ClassDetail, error)
	FindByID(ctx context.Context, id int64) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

type classTeacherLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// UpsertClassRequest is the payload for creating or updating a class.
type UpsertClassRequest struct {
	TeacherID  int64  `json:"teacher_id" validate:"required,gt=0"`
	SeriesName string `json:"series_name" validate:"required,max=255"`
}

// ClassService contains business logic for classes.
type ClassService struct {
	repo      classRepository
	teachers  classTeacherLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, teachers classTeacherLookup, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns every class.
func (s *ClassService) List(ctx context.Context) ([]models.ClassDetail, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list classes")
	}
	return classes, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "class not found", "failed to load class")
	}
	return class, nil
}

// ListVisibleTo returns the classes a teacher may see. The role is evaluated
// once: full-access teachers see every class, scoped teachers their own.
func (s *ClassService) ListVisibleTo(ctx context.Context, teacherID int64) ([]models.ClassDetail, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, loadError(err, "teacher not found", "failed to load teacher")
	}

	var classes []models.ClassDetail
	if teacher.Role().CanViewAllClasses() {
		classes, err = s.repo.List(ctx)
	} else {
		classes, err = s.repo.ListByTeacher(ctx, teacherID)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list classes")
	}
	s.logger.Debug("classes resolved for teacher",
		zap.Int64("teacher_id", teacherID),
		zap.Stringer("role", teacher.Role()),
		zap.Int("count", len(classes)),
	)
	return classes, nil
}

// Create adds a class.
func (s *ClassService) Create(ctx context.Context, req UpsertClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class := &models.Class{TeacherID: req.TeacherID, SeriesName: strings.TrimSpace(req.SeriesName)}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, writeError(err, "class not found", "failed to create class")
	}
	return class, nil
}

// Update modifies a class.
func (s *ClassService) Update(ctx context.Context, id int64, req UpsertClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class := &models.Class{ID: id, TeacherID: req.TeacherID, SeriesName: strings.TrimSpace(req.SeriesName)}
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, writeError(err, "class not found", "failed to update class")
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "class not found", "failed to delete class")
	}
	return nil
}
