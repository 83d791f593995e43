package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/repository"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

const topSkillsLimit = 5

type reportRepository interface {
	ClassAverage(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (*float64, error)
	CountStudentsWithScores(ctx context.Context, classID, termID int64) (int, error)
	ScoreBands(ctx context.Context, classID, termID int64) ([]models.ScoreBand, error)
	ScoresByStudent(ctx context.Context, studentID int64) ([]models.StudentTermScore, error)
	ScoresByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.StudentTermScore, error)
	StudentSubjectScores(ctx context.Context, studentID, termID, classID int64) ([]models.SubjectScore, error)
	StudentSubjectScore(ctx context.Context, studentID, termID, subjectID, classID int64) (*models.SubjectScore, error)
	ClassRoster(ctx context.Context, filter repository.RosterFilter) ([]models.RosterScore, error)
	ScoresByKind(ctx context.Context, kind models.AssessmentKind, classID, termID, subjectID int64) ([]models.KindScore, error)
	ScoreSheet(ctx context.Context, classID, termID int64) ([]models.ScoreSheetRow, error)
	SkillCounts(ctx context.Context, filter repository.SkillCountFilter) ([]models.SkillCount, error)
	StudentSkillCounts(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.StudentSkillCount, error)
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

var chartBands = []string{
	models.BandNoScore,
	models.BandLow,
	models.BandMid,
	models.BandHigh,
	models.BandOutOfRange,
}

// ReportService shapes the aggregate reporting queries.
type ReportService struct {
	repo    reportRepository
	metrics queryObserver
	logger  *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, metrics queryObserver, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, metrics: metrics, logger: logger}
}

// ClassAverage returns the rounded average of a kind for a class term.
func (s *ReportService) ClassAverage(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (float64, error) {
	defer s.observe("class_average", time.Now())
	avg, err := s.repo.ClassAverage(ctx, classID, termID, kind)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to compute average")
	}
	if avg == nil {
		return 0, notFound("no scores recorded for class and term")
	}
	return roundScore(*avg), nil
}

// CountStudentsWithScores returns how many students of the class have a score.
func (s *ReportService) CountStudentsWithScores(ctx context.Context, classID, termID int64) (int, error) {
	defer s.observe("count_students_with_scores", time.Now())
	total, err := s.repo.CountStudentsWithScores(ctx, classID, termID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count students")
	}
	return total, nil
}

// ScoreChart returns every band in display order, zero-filled.
func (s *ReportService) ScoreChart(ctx context.Context, classID, termID int64) ([]models.ScoreBand, error) {
	defer s.observe("score_bands", time.Now())
	rows, err := s.repo.ScoreBands(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build score chart")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Band] += row.Count
	}
	bands := make([]models.ScoreBand, 0, len(chartBands))
	for _, band := range chartBands {
		bands = append(bands, models.ScoreBand{Band: band, Count: counts[band]})
	}
	return bands, nil
}

// StudentScores lists every score of a student.
func (s *ReportService) StudentScores(ctx context.Context, studentID int64) ([]models.StudentTermScore, error) {
	scores, err := s.repo.ScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student scores")
	}
	if scores == nil {
		scores = []models.StudentTermScore{}
	}
	return scores, nil
}

// StudentTermScores lists a student's scores in a term; none is a 404.
func (s *ReportService) StudentTermScores(ctx context.Context, studentID, termID int64) ([]models.StudentTermScore, error) {
	scores, err := s.repo.ScoresByStudentTerm(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student scores")
	}
	if len(scores) == 0 {
		return nil, notFound("no scores for student and term")
	}
	return scores, nil
}

// StudentSubjectScores lists a student's per-subject scores; none is a 404.
func (s *ReportService) StudentSubjectScores(ctx context.Context, studentID, termID, classID int64) ([]models.SubjectScore, error) {
	scores, err := s.repo.StudentSubjectScores(ctx, studentID, termID, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subject scores")
	}
	if len(scores) == 0 {
		return nil, notFound("no scores for student in class and term")
	}
	return scores, nil
}

// StudentSubjectScore returns one subject score.
func (s *ReportService) StudentSubjectScore(ctx context.Context, studentID, termID, subjectID, classID int64) (*models.SubjectScore, error) {
	score, err := s.repo.StudentSubjectScore(ctx, studentID, termID, subjectID, classID)
	if err != nil {
		return nil, loadError(err, "score not found", "failed to load subject score")
	}
	return score, nil
}

// ClassRoster lists the class with nullable scores of a kind.
func (s *ReportService) ClassRoster(ctx context.Context, classID, termID, subjectID int64, kind models.AssessmentKind) ([]models.RosterScore, error) {
	defer s.observe("class_roster", time.Now())
	roster, err := s.repo.ClassRoster(ctx, repository.RosterFilter{
		ClassID:   classID,
		TermID:    termID,
		SubjectID: &subjectID,
		Kind:      kind,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	if len(roster) == 0 {
		return nil, notFound("no students in class")
	}
	return roster, nil
}

// StudentsWithScores lists the class with the regular score of the term.
func (s *ReportService) StudentsWithScores(ctx context.Context, classID, termID int64) ([]models.RosterScore, error) {
	defer s.observe("class_roster", time.Now())
	roster, err := s.repo.ClassRoster(ctx, repository.RosterFilter{
		ClassID: classID,
		TermID:  termID,
		Kind:    models.AssessmentRegular,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	if len(roster) == 0 {
		return nil, notFound("no students in class")
	}
	return roster, nil
}

// ScoresByKind lists only students holding a score of the kind.
func (s *ReportService) ScoresByKind(ctx context.Context, kind models.AssessmentKind, classID, termID, subjectID int64) ([]models.KindScore, error) {
	scores, err := s.repo.ScoresByKind(ctx, kind, classID, termID, subjectID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list scores")
	}
	if len(scores) == 0 {
		return nil, notFound("no scores of this kind")
	}
	return scores, nil
}

// SkillStats returns the most and least exercised skills of a class term.
func (s *ReportService) SkillStats(ctx context.Context, classID, termID int64, kind models.AssessmentKind) (*models.SkillStats, error) {
	defer s.observe("skill_counts", time.Now())
	counts, err := s.repo.SkillCounts(ctx, repository.SkillCountFilter{ClassID: classID, TermID: termID, Kind: &kind})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to compute skill statistics")
	}
	if len(counts) == 0 {
		return nil, notFound("no skill statistics found for class, term and kind")
	}
	return &models.SkillStats{
		MostPracticed:  counts[0],
		LeastPracticed: counts[len(counts)-1],
	}, nil
}

// StudentSkillStats returns each student's most and least exercised skill.
func (s *ReportService) StudentSkillStats(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.StudentSkillStats, error) {
	defer s.observe("student_skill_counts", time.Now())
	rows, err := s.repo.StudentSkillCounts(ctx, classID, termID, kind)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to compute student skill statistics")
	}
	if len(rows) == 0 {
		return nil, notFound("no skill data for class, term and kind")
	}

	// rows arrive grouped by student, most exercised first.
	var stats []models.StudentSkillStats
	for _, row := range rows {
		n := len(stats)
		if n == 0 || stats[n-1].StudentID != row.StudentID {
			stats = append(stats, models.StudentSkillStats{
				StudentID:      row.StudentID,
				StudentName:    row.StudentName,
				MostPracticed:  row.SkillName,
				LeastPracticed: row.SkillName,
			})
			continue
		}
		stats[n-1].LeastPracticed = row.SkillName
	}
	return stats, nil
}

// TopSkills returns the five most exercised skills; none is a 404.
func (s *ReportService) TopSkills(ctx context.Context, classID, termID int64, kind models.AssessmentKind) ([]models.SkillCount, error) {
	defer s.observe("skill_counts", time.Now())
	counts, err := s.repo.SkillCounts(ctx, repository.SkillCountFilter{
		ClassID: classID,
		TermID:  termID,
		Kind:    &kind,
		Limit:   topSkillsLimit,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list top skills")
	}
	if len(counts) == 0 {
		return nil, notFound("no data for top skills")
	}
	return counts, nil
}

// WeakestSkills returns the five least exercised skills, possibly none.
func (s *ReportService) WeakestSkills(ctx context.Context, classID, termID int64) ([]models.SkillCount, error) {
	defer s.observe("skill_counts", time.Now())
	counts, err := s.repo.SkillCounts(ctx, repository.SkillCountFilter{
		ClassID:   classID,
		TermID:    termID,
		Ascending: true,
		Limit:     topSkillsLimit,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list weakest skills")
	}
	if counts == nil {
		counts = []models.SkillCount{}
	}
	return counts, nil
}

func (s *ReportService) observe(label string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(started))
	}
}
