package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/export"
)

const (
	headerStudentID = "Student ID"
	headerStudent   = "Student"
	headerRegular   = "Regular"
	headerMakeUp    = "Make-up"
)

type scoreSheetSource interface {
	ScoreSheet(ctx context.Context, classID, termID int64) ([]models.ScoreSheetRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders class score sheets.
type ExportService struct {
	source  scoreSheetSource
	csv     csvRenderer
	pdf     documentRenderer
	xlsx    documentRenderer
	metrics queryObserver
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// pkg/export implementations.
func NewExportService(source scoreSheetSource, metrics queryObserver, logger *zap.Logger, csv csvRenderer, pdf, xlsx documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{
		source:  source,
		csv:     csv,
		pdf:     pdf,
		xlsx:    xlsx,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ScoreSheet renders both assessment kinds of every student of the class for
// the term in the requested format.
func (s *ExportService) ScoreSheet(ctx context.Context, classID, termID int64, format models.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = models.ExportCSV
	}
	if !format.Valid() {
		return nil, invalid("format must be csv, pdf or xlsx")
	}

	started := s.now()
	rows, err := s.source.ScoreSheet(ctx, classID, termID)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("score_sheet", s.now().Sub(started))
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load score sheet")
	}
	if len(rows) == 0 {
		return nil, notFound("no students in class")
	}

	dataset := buildScoreSheet(rows)
	title := fmt.Sprintf("Class %d - Term %d", classID, termID)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case models.ExportCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case models.ExportPDF:
		body, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case models.ExportXLSX:
		body, err = s.xlsx.Render(dataset, title)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render score sheet")
	}

	s.logger.Info("score sheet exported",
		zap.Int64("class_id", classID),
		zap.Int64("term_id", termID),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)
	return &ExportFile{
		Filename:    s.filename(classID, termID, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) filename(classID, termID int64, format models.ExportFormat) string {
	stamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("scores_class%d_term%d_%s.%s", classID, termID, stamp, strings.ToLower(string(format)))
}

func buildScoreSheet(rows []models.ScoreSheetRow) export.Dataset {
	data := export.Dataset{
		Headers: []string{headerStudentID, headerStudent, headerRegular, headerMakeUp},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			headerStudentID: fmt.Sprintf("%d", row.StudentID),
			headerStudent:   row.StudentName,
			headerRegular:   formatScore(row.RegularScore),
			headerMakeUp:    formatScore(row.MakeUpScore),
		})
	}
	return data
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
