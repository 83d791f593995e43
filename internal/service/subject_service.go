package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Subject, error)
	ListWithTerms(ctx context.Context, classID *int64) ([]models.SubjectTerm, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// UpsertSubjectRequest is the payload for creating or updating a subject.
type UpsertSubjectRequest struct {
	ClassID int64  `json:"class_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,max=255"`
}

// SubjectService orchestrates subject operations.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns every subject.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	return subjects, nil
}

// ListByClass returns the subjects of a class.
func (s *SubjectService) ListByClass(ctx context.Context, classID int64) ([]models.Subject, error) {
	subjects, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	return subjects, nil
}

// ListWithTerms returns subjects joined with their terms.
func (s *SubjectService) ListWithTerms(ctx context.Context, classID *int64) ([]models.SubjectTerm, error) {
	rows, err := s.repo.ListWithTerms(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects with terms")
	}
	return rows, nil
}

// Get returns a subject.
func (s *SubjectService) Get(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "subject not found", "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject.
func (s *SubjectService) Create(ctx context.Context, req UpsertSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{ClassID: req.ClassID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, writeError(err, "subject not found", "failed to create subject")
	}
	return subject, nil
}

// Update modifies a subject.
func (s *SubjectService) Update(ctx context.Context, id int64, req UpsertSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{ID: id, ClassID: req.ClassID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, writeError(err, "subject not found", "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "subject not found", "failed to delete subject")
	}
	return nil
}
