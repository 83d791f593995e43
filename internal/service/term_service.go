package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type termRepository interface {
	ListBySubject(ctx context.Context, subjectID int64) ([]models.Term, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Term, error)
	FindByID(ctx context.Context, id int64) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
	Delete(ctx context.Context, id int64) error
}

// UpsertTermRequest is the payload for creating or updating a term.
type UpsertTermRequest struct {
	SubjectID   int64  `json:"subject_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,max=255"`
}

// TermService orchestrates term operations.
type TermService struct {
	repo      termRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService constructs a TermService.
func NewTermService(repo termRepository, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, validator: validate, logger: logger}
}

// ListBySubject returns the terms of a subject.
func (s *TermService) ListBySubject(ctx context.Context, subjectID int64) ([]models.Term, error) {
	terms, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list terms")
	}
	return terms, nil
}

// ListByClass returns the terms of every subject of a class.
func (s *TermService) ListByClass(ctx context.Context, classID int64) ([]models.Term, error) {
	terms, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list terms")
	}
	return terms, nil
}

// Get returns a term.
func (s *TermService) Get(ctx context.Context, id int64) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "term not found", "failed to load term")
	}
	return term, nil
}

// Create adds a term.
func (s *TermService) Create(ctx context.Context, req UpsertTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid term payload")
	}
	term := &models.Term{SubjectID: req.SubjectID, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.Create(ctx, term); err != nil {
		return nil, writeError(err, "term not found", "failed to create term")
	}
	return term, nil
}

// Update modifies a term.
func (s *TermService) Update(ctx context.Context, id int64, req UpsertTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid term payload")
	}
	term := &models.Term{ID: id, SubjectID: req.SubjectID, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.Update(ctx, term); err != nil {
		return nil, writeError(err, "term not found", "failed to update term")
	}
	return term, nil
}

// Delete removes a term.
func (s *TermService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "term not found", "failed to delete term")
	}
	return nil
}
