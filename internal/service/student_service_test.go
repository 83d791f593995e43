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

type mockStudentRepo struct {
	byClass   map[int64][]models.Student
	byTerm    []models.Student
	created   *models.Student
	createErr error
	deleteErr error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var all []models.Student
	for _, students := range m.byClass {
		all = append(all, students...)
	}
	return all, len(all), nil
}

func (m *mockStudentRepo) ListByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	return m.byClass[classID], nil
}

func (m *mockStudentRepo) ListByTermAndTeacher(ctx context.Context, termID, teacherID int64) ([]models.Student, error) {
	return m.byTerm, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	for _, students := range m.byClass {
		for _, s := range students {
			if s.ID == id {
				cp := s
				return &cp, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	student.ID = 99
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, err := m.FindByID(ctx, student.ID); err != nil {
		return err
	}
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteErr
}

func TestStudentServiceListByClassEmptyIsNotFound(t *testing.T) {
	repo := &mockStudentRepo{byClass: map[int64][]models.Student{1: {{ID: 1, Name: "Ana"}}}}
	svc := NewStudentService(repo, nil, nil)

	students, err := svc.ListByClass(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	_, err = svc.ListByClass(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.ListByTermAndTeacher(context.Background(), 3, 4)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)
	classID := int64(7)
	birth := "2010-02-01"

	student, err := svc.Create(context.Background(), UpsertStudentRequest{Name: "  Ana ", ClassID: &classID, BirthDate: &birth})
	require.NoError(t, err)
	assert.Equal(t, int64(99), student.ID)
	assert.Equal(t, "Ana", repo.created.Name)
	assert.Equal(t, &classID, repo.created.ClassID)
}

func TestStudentServiceCreateUnknownClass(t *testing.T) {
	repo := &mockStudentRepo{createErr: &pq.Error{Code: "23503"}}
	svc := NewStudentService(repo, nil, nil)
	classID := int64(7)

	_, err := svc.Create(context.Background(), UpsertStudentRequest{Name: "Ana", ClassID: &classID})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)
	_, err := svc.Create(context.Background(), UpsertStudentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDeleteReferenced(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{deleteErr: &pq.Error{Code: "23503"}}, nil, nil)
	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
