package models

// Score bands used by the class chart.
const (
	BandNoScore    = "no_score"
	BandLow        = "0-4.9"
	BandMid        = "5-6.9"
	BandHigh       = "7-10"
	BandOutOfRange = "out_of_range"
)

// ScoreBand counts enrollments whose score falls in a band.
type ScoreBand struct {
	Band  string `db:"band" json:"band"`
	Count int    `db:"total" json:"count"`
}

// StudentTermScore is one stored score of a student with its term.
type StudentTermScore struct {
	TermEnrollmentID int64          `db:"term_enrollment_id" json:"term_enrollment_id"`
	TermScoreID      int64          `db:"term_score_id" json:"term_score_id"`
	TermID           int64          `db:"term_id" json:"term_id"`
	TermDescription  string         `db:"term_description" json:"term_description"`
	AssessmentKind   AssessmentKind `db:"assessment_kind" json:"assessment_kind"`
	Score            float64        `db:"score" json:"score"`
}

// SubjectScore is a student's score in one subject.
type SubjectScore struct {
	SubjectID      int64          `db:"subject_id" json:"subject_id"`
	SubjectName    string         `db:"subject_name" json:"subject_name"`
	AssessmentKind AssessmentKind `db:"assessment_kind" json:"assessment_kind"`
	Score          float64        `db:"score" json:"score"`
}

// RosterScore is a class roster line; Score is nil when nothing was recorded.
type RosterScore struct {
	StudentID   int64    `db:"student_id" json:"student_id"`
	StudentName string   `db:"student_name" json:"student_name"`
	Score       *float64 `db:"score" json:"score"`
}

// KindScore is a recorded score of a given kind with its context.
type KindScore struct {
	StudentID       int64          `db:"student_id" json:"student_id"`
	StudentName     string         `db:"student_name" json:"student_name"`
	Score           float64        `db:"score" json:"score"`
	TermDescription string         `db:"term_description" json:"term_description"`
	SubjectName     string         `db:"subject_name" json:"subject_name"`
	AssessmentKind  AssessmentKind `db:"assessment_kind" json:"assessment_kind"`
}

// ScoreSheetRow is one line of the exported class score sheet.
type ScoreSheetRow struct {
	StudentID    int64    `db:"student_id"`
	StudentName  string   `db:"student_name"`
	RegularScore *float64 `db:"regular_score"`
	MakeUpScore  *float64 `db:"make_up_score"`
}

// SkillCount is how many times a skill was exercised.
type SkillCount struct {
	Name  string `db:"name" json:"name"`
	Total int    `db:"total" json:"total"`
}

// SkillStats holds the most and least exercised skills of a class term.
type SkillStats struct {
	MostPracticed  SkillCount `json:"most_practiced"`
	LeastPracticed SkillCount `json:"least_practiced"`
}

// StudentSkillCount is a skill count scoped to one student.
type StudentSkillCount struct {
	StudentID   int64  `db:"student_id"`
	StudentName string `db:"student_name"`
	SkillName   string `db:"skill_name"`
	Total       int    `db:"total"`
}

// StudentSkillStats summarises one student's skill performance.
type StudentSkillStats struct {
	StudentID      int64  `json:"student_id"`
	StudentName    string `json:"student_name"`
	MostPracticed  string `json:"most_practiced"`
	LeastPracticed string `json:"least_practiced"`
}

// ExportFormat is a score sheet download format.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

// Valid reports whether f is supported.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportPDF, ExportXLSX:
		return true
	}
	return false
}
