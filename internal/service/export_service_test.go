package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

func TestExportServiceScoreSheetCSV(t *testing.T) {
	regular := 8.5
	makeUp := 6.0
	repo := &reportRepoStub{sheet: []models.ScoreSheetRow{
		{StudentID: 1, StudentName: "Ana", RegularScore: &regular},
		{StudentID: 2, StudentName: "Bruno", RegularScore: &regular, MakeUpScore: &makeUp},
	}}
	observer := &observedQuery{}
	svc := NewExportService(repo, observer, nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	file, err := svc.ScoreSheet(context.Background(), 3, 4, models.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "scores_class3_term4_20240501_120000.csv", file.Filename)
	assert.Equal(t, "Student ID,Student,Regular,Make-up\n1,Ana,8.50,\n2,Bruno,8.50,6.00\n", string(file.Body))
	assert.Equal(t, []string{"score_sheet"}, observer.labels)
}

func TestExportServiceScoreSheetFormats(t *testing.T) {
	repo := &reportRepoStub{sheet: []models.ScoreSheetRow{{StudentID: 1, StudentName: "Ana"}}}
	svc := NewExportService(repo, nil, nil, nil, nil, nil)

	pdf, err := svc.ScoreSheet(context.Background(), 3, 4, models.ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.NotEmpty(t, pdf.Body)

	xlsx, err := svc.ScoreSheet(context.Background(), 3, 4, models.ExportXLSX)
	require.NoError(t, err)
	assert.Contains(t, xlsx.Filename, ".xlsx")

	_, err = svc.ScoreSheet(context.Background(), 3, 4, models.ExportFormat("doc"))
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestExportServiceScoreSheetEmptyClass(t *testing.T) {
	svc := NewExportService(&reportRepoStub{}, nil, nil, nil, nil, nil)
	_, err := svc.ScoreSheet(context.Background(), 3, 4, "")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
