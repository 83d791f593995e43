package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type mockSkillRepo struct {
	byName      map[string]*models.Skill
	created     []models.Skill
	createErr   error
	termSkills  []models.Skill
	resolved    map[string]int64
	resolveArgs []string
}

func (m *mockSkillRepo) List(ctx context.Context) ([]models.Skill, error) { return nil, nil }

func (m *mockSkillRepo) FindByID(ctx context.Context, id int64) (*models.Skill, error) {
	return nil, sql.ErrNoRows
}

func (m *mockSkillRepo) FindByName(ctx context.Context, name string, subjectID *int64) (*models.Skill, error) {
	if skill, ok := m.byName[name]; ok {
		return skill, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSkillRepo) ResolveCodes(ctx context.Context, codes []string) (map[string]int64, error) {
	m.resolveArgs = codes
	out := map[string]int64{}
	for _, code := range codes {
		if id, ok := m.resolved[code]; ok {
			out[code] = id
		}
	}
	return out, nil
}

func (m *mockSkillRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentSkill, error) {
	return nil, nil
}

func (m *mockSkillRepo) ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error) {
	return m.termSkills, nil
}

func (m *mockSkillRepo) Create(ctx context.Context, skill *models.Skill) error {
	if m.createErr != nil {
		return m.createErr
	}
	skill.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *skill)
	return nil
}

func (m *mockSkillRepo) Update(ctx context.Context, skill *models.Skill) error { return nil }

func (m *mockSkillRepo) Delete(ctx context.Context, id int64) error { return sql.ErrNoRows }

func TestSkillServiceCreateIfNotExistsCreatesUpperCased(t *testing.T) {
	repo := &mockSkillRepo{}
	svc := NewSkillService(repo, nil, nil)

	skill, created, err := svc.CreateIfNotExists(context.Background(), UpsertSkillRequest{Name: " ef06ma01 "})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "EF06MA01", skill.Name)
	require.Len(t, repo.created, 1)
}

func TestSkillServiceCreateIfNotExistsReturnsExisting(t *testing.T) {
	existing := &models.Skill{ID: 5, Name: "EF06MA01"}
	repo := &mockSkillRepo{byName: map[string]*models.Skill{"EF06MA01": existing}}
	svc := NewSkillService(repo, nil, nil)

	skill, created, err := svc.CreateIfNotExists(context.Background(), UpsertSkillRequest{Name: "ef06ma01"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(5), skill.ID)
	assert.Empty(t, repo.created)
}

func TestSkillServiceCreateIfNotExistsConcurrentInsert(t *testing.T) {
	repo := &mockSkillRepo{createErr: &pq.Error{Code: "23505"}}
	svc := NewSkillService(repo, nil, nil)

	_, _, err := svc.CreateIfNotExists(context.Background(), UpsertSkillRequest{Name: "ef06ma01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSkillServiceListByStudentTermEmpty(t *testing.T) {
	svc := NewSkillService(&mockSkillRepo{}, nil, nil)
	_, err := svc.ListByStudentTerm(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestSkillServiceDeleteMissing(t *testing.T) {
	svc := NewSkillService(&mockSkillRepo{}, nil, nil)
	err := svc.Delete(context.Background(), 1)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
