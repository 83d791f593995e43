package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type mockTeacherRepo struct {
	items      map[int64]*models.Teacher
	cpfIndex   map[string]int64
	listResult []models.Teacher
	listTotal  int
	listErr    error
	nextID     int64
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{items: map[int64]*models.Teacher{}, cpfIndex: map[string]int64{}}
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByCPF(ctx context.Context, cpf string) (*models.Teacher, error) {
	if id, ok := m.cpfIndex[cpf]; ok {
		return m.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByCPF(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	owner, ok := m.cpfIndex[cpf]
	return ok && owner != excludeID, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	m.nextID++
	teacher.ID = m.nextID
	teacher.CreatedAt = time.Now()
	teacher.UpdatedAt = teacher.CreatedAt
	cp := *teacher
	m.items[teacher.ID] = &cp
	m.cpfIndex[teacher.CPF] = teacher.ID
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := m.items[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *teacher
	m.items[teacher.ID] = &cp
	m.cpfIndex[teacher.CPF] = teacher.ID
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func newTeacherService(repo *mockTeacherRepo) *TeacherService {
	return NewTeacherService(repo, validator.New(), zap.NewNop())
}

func TestTeacherServiceCreateHashesPassword(t *testing.T) {
	repo := newMockTeacherRepo()
	svc := newTeacherService(repo)
	birth := "1980-04-12"
	priority := int16(1)

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		Name:      " Maria Silva ",
		CPF:       "12345678901",
		BirthDate: &birth,
		Priority:  &priority,
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", teacher.Name)
	assert.Equal(t, models.RoleFullAccess, teacher.Role())
	require.NotNil(t, teacher.BirthDate)
	assert.Equal(t, 1980, teacher.BirthDate.Year())
	assert.NotEqual(t, "secret123", teacher.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte("secret123")))
}

func TestTeacherServiceCreateDuplicateCPF(t *testing.T) {
	repo := newMockTeacherRepo()
	svc := newTeacherService(repo)
	req := CreateTeacherRequest{Name: "A", CPF: "12345678901", Password: "secret123"}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := newTeacherService(newMockTeacherRepo())
	priority := int16(3)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Name: "A", CPF: "123", Password: "secret123", Priority: &priority})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "min", details["CPF"])
	assert.Equal(t, "oneof", details["Priority"])
}

func TestTeacherServiceCreateRejectsBadDate(t *testing.T) {
	svc := newTeacherService(newMockTeacherRepo())
	birth := "12/04/1980"
	_, err := svc.Create(context.Background(), CreateTeacherRequest{Name: "A", CPF: "12345678901", Password: "secret123", BirthDate: &birth})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestTeacherServiceUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	repo := newMockTeacherRepo()
	svc := newTeacherService(repo)
	created, err := svc.Create(context.Background(), CreateTeacherRequest{Name: "A", CPF: "12345678901", Password: "secret123"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateTeacherRequest{Name: "B", CPF: "12345678901"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
}

func TestTeacherServiceGetNotFound(t *testing.T) {
	svc := newTeacherService(newMockTeacherRepo())
	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.GetByCPF(context.Background(), "000")
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	err = svc.Delete(context.Background(), 42)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestTeacherServiceListPagination(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.listResult = []models.Teacher{{ID: 1, Name: "A"}}
	repo.listTotal = 31
	svc := newTeacherService(repo)

	teachers, pagination, err := svc.List(context.Background(), models.TeacherFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 31, pagination.TotalCount)
}
