package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Teacher, error)
	ExistsByCPF(ctx context.Context, cpf string, excludeID int64) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	CPF       string  `json:"cpf" validate:"required,min=11,max=14"`
	BirthDate *string `json:"birth_date"`
	Priority  *int16  `json:"priority" validate:"omitempty,oneof=0 1"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
}

// UpdateTeacherRequest represents payload for updating teachers. An empty
// password keeps the current credential.
type UpdateTeacherRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	CPF       string  `json:"cpf" validate:"required,min=11,max=14"`
	BirthDate *string `json:"birth_date"`
	Priority  *int16  `json:"priority" validate:"omitempty,oneof=0 1"`
	Password  string  `json:"password" validate:"omitempty,min=6,max=72"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list teachers")
	}
	return teachers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

// GetByCPF returns a teacher by CPF.
func (s *TeacherService) GetByCPF(ctx context.Context, cpf string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByCPF(ctx, strings.TrimSpace(cpf))
	if err != nil {
		return nil, loadError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher with a hashed password.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	cpf := strings.TrimSpace(req.CPF)
	if err := s.ensureUniqueCPF(ctx, cpf, 0); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	teacher := &models.Teacher{
		Name:         strings.TrimSpace(req.Name),
		CPF:          cpf,
		BirthDate:    birthDate,
		PasswordHash: string(hash),
	}
	if req.Priority != nil {
		teacher.Priority = *req.Priority
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher not found", "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.Int64("teacher_id", teacher.ID), zap.Stringer("role", teacher.Role()))
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id int64, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher not found", "failed to load teacher")
	}
	cpf := strings.TrimSpace(req.CPF)
	if err := s.ensureUniqueCPF(ctx, cpf, id); err != nil {
		return nil, err
	}

	teacher.Name = strings.TrimSpace(req.Name)
	teacher.CPF = cpf
	teacher.BirthDate = birthDate
	if req.Priority != nil {
		teacher.Priority = *req.Priority
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
		teacher.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher not found", "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "teacher not found", "failed to delete teacher")
	}
	return nil
}

func (s *TeacherService) ensureUniqueCPF(ctx context.Context, cpf string, excludeID int64) error {
	exists, err := s.repo.ExistsByCPF(ctx, cpf, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check cpf uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}
	return nil
}
