package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func TestReportRepositoryClassAverage(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(ts.score)")).
		WithArgs(int64(1), int64(2), models.AssessmentRegular).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("7.25"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(ts.score)")).
		WithArgs(int64(1), int64(3), models.AssessmentRegular).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	avg, err := repo.ClassAverage(context.Background(), 1, 2, models.AssessmentRegular)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 7.25, *avg, 1e-9)

	avg, err = repo.ClassAverage(context.Background(), 1, 3, models.AssessmentRegular)
	require.NoError(t, err)
	assert.Nil(t, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryClassRosterWithSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	subjectID := int64(9)
	mock.ExpectQuery(regexp.QuoteMeta("AND te.term_id IN (SELECT id FROM terms WHERE subject_id = $4)")).
		WithArgs(int64(1), int64(2), models.AssessmentRegular, int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "student_name", "score"}).
			AddRow(3, "Ana", 8.5).
			AddRow(4, "Bia", nil))

	roster, err := repo.ClassRoster(context.Background(), RosterFilter{ClassID: 1, TermID: 2, SubjectID: &subjectID})
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.NotNil(t, roster[0].Score)
	assert.Equal(t, 8.5, *roster[0].Score)
	assert.Nil(t, roster[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySkillCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	kind := models.AssessmentMakeUp
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY sk.id, sk.name ORDER BY total DESC, sk.name ASC, sk.id ASC LIMIT 5")).
		WithArgs(int64(1), int64(2), kind).
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}).AddRow("H1", 4).AddRow("H2", 1).AddRow("H2", 1))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY sk.id, sk.name ORDER BY total ASC, sk.name ASC, sk.id ASC LIMIT 5")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}))

	top, err := repo.SkillCounts(context.Background(), SkillCountFilter{ClassID: 1, TermID: 2, Kind: &kind, Limit: 5})
	require.NoError(t, err)
	// Distinct skills sharing a name stay separate rows.
	assert.Equal(t, []models.SkillCount{{Name: "H1", Total: 4}, {Name: "H2", Total: 1}, {Name: "H2", Total: 1}}, top)

	bottom, err := repo.SkillCounts(context.Background(), SkillCountFilter{ClassID: 1, TermID: 2, Ascending: true, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, bottom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryStudentSkillCountsGroupsBySkillID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	kind := models.AssessmentRegular
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY s.id, s.name, sk.id, sk.name")).
		WithArgs(int64(1), int64(2), kind).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "student_name", "skill_name", "total"}).
			AddRow(7, "Ana", "H1", 2).
			AddRow(7, "Ana", "H1", 1))

	counts, err := repo.StudentSkillCounts(context.Background(), 1, 2, kind)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Total)
	assert.Equal(t, 1, counts[1].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryScoreBands(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("GROUP BY band").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"band", "total"}).AddRow(models.BandHigh, 3).AddRow(models.BandNoScore, 1))

	bands, err := repo.ScoreBands(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.ScoreBand{{Band: models.BandHigh, Count: 3}, {Band: models.BandNoScore, Count: 1}}, bands)
	assert.NoError(t, mock.ExpectationsWereMet())
}
