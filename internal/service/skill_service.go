package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/pkg/database"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type skillRepository interface {
	List(ctx context.Context) ([]models.Skill, error)
	FindByID(ctx context.Context, id int64) (*models.Skill, error)
	FindByName(ctx context.Context, name string, subjectID *int64) (*models.Skill, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentSkill, error)
	ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error)
	Create(ctx context.Context, skill *models.Skill) error
	Update(ctx context.Context, skill *models.Skill) error
	Delete(ctx context.Context, id int64) error
}

// UpsertSkillRequest is the payload for skill writes.
type UpsertSkillRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	SubjectID   *int64 `json:"subject_id" validate:"omitempty,gt=0"`
}

// SkillService manages the skill catalog.
type SkillService struct {
	repo      skillRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSkillService constructs a SkillService.
func NewSkillService(repo skillRepository, validate *validator.Validate, logger *zap.Logger) *SkillService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillService{repo: repo, validator: validate, logger: logger}
}

// List returns the catalog.
func (s *SkillService) List(ctx context.Context) ([]models.Skill, error) {
	skills, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skills")
	}
	return skills, nil
}

// Get returns a skill.
func (s *SkillService) Get(ctx context.Context, id int64) (*models.Skill, error) {
	skill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "skill not found", "failed to load skill")
	}
	return skill, nil
}

// ListByStudent returns every skill the student exercised.
func (s *SkillService) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentSkill, error) {
	skills, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student skills")
	}
	return skills, nil
}

// ListByStudentTerm returns the skills exercised in one term; none is a 404.
func (s *SkillService) ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error) {
	skills, err := s.repo.ListByStudentTerm(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student skills")
	}
	if len(skills) == 0 {
		return nil, notFound("no skills found for student and term")
	}
	return skills, nil
}

// Create adds a skill as given.
func (s *SkillService) Create(ctx context.Context, req UpsertSkillRequest) (*models.Skill, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid skill payload")
	}
	skill := &models.Skill{Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description), SubjectID: req.SubjectID}
	if err := s.repo.Create(ctx, skill); err != nil {
		return nil, writeError(err, "skill not found", "failed to create skill")
	}
	return skill, nil
}

// CreateIfNotExists stores the skill under its upper-cased code unless it is
// already in the catalog for the subject. The boolean reports creation.
func (s *SkillService) CreateIfNotExists(ctx context.Context, req UpsertSkillRequest) (*models.Skill, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, validationError(err, "invalid skill payload")
	}
	name := strings.ToUpper(strings.TrimSpace(req.Name))

	existing, err := s.repo.FindByName(ctx, name, req.SubjectID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Internal(err, "failed to check skill")
	}

	skill := &models.Skill{Name: name, Description: strings.TrimSpace(req.Description), SubjectID: req.SubjectID}
	if err := s.repo.Create(ctx, skill); err != nil {
		// A concurrent request created it first.
		if database.IsUniqueViolation(err) {
			existing, findErr := s.repo.FindByName(ctx, name, req.SubjectID)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, writeError(err, "skill not found", "failed to create skill")
	}
	return skill, true, nil
}

// Update modifies a skill.
func (s *SkillService) Update(ctx context.Context, id int64, req UpsertSkillRequest) (*models.Skill, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid skill payload")
	}
	skill := &models.Skill{ID: id, Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description), SubjectID: req.SubjectID}
	if err := s.repo.Update(ctx, skill); err != nil {
		return nil, writeError(err, "skill not found", "failed to update skill")
	}
	return skill, nil
}

// Delete removes a skill.
func (s *SkillService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "skill not found", "failed to delete skill")
	}
	return nil
}
