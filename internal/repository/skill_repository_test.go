package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillRepositoryResolveCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE UPPER(name) = ANY($1)")).
		WithArgs(pq.Array([]string{"H1", "H2"})).
		WillReturnRows(sqlmock.NewRows([]string{"code", "id"}).AddRow("H1", 10))

	resolved, err := repo.ResolveCodes(context.Background(), []string{"h1", "H2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"H1": 10}, resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepositoryResolveCodesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	resolved, err := repo.ResolveCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepositoryFindByNameWithoutSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM skills WHERE name = $1 AND subject_id IS NULL LIMIT 1")).
		WithArgs("H1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_id", "name", "description", "created_at", "updated_at"}))

	_, err := repo.FindByName(context.Background(), "H1", nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
