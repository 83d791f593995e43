package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// AssessmentKind distinguishes the regular assessment from the make-up one.
type AssessmentKind int16

const (
	AssessmentRegular AssessmentKind = 0
	AssessmentMakeUp  AssessmentKind = 1
)

// Valid reports whether k is a known kind.
func (k AssessmentKind) Valid() bool {
	return k == AssessmentRegular || k == AssessmentMakeUp
}

func (k AssessmentKind) String() string {
	switch k {
	case AssessmentRegular:
		return "regular"
	case AssessmentMakeUp:
		return "make_up"
	default:
		return fmt.Sprintf("kind(%d)", int16(k))
	}
}

// ParseAssessmentKind parses the numeric form used in paths and query strings.
func ParseAssessmentKind(raw string) (AssessmentKind, error) {
	n, err := strconv.ParseInt(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid assessment kind %q", raw)
	}
	k := AssessmentKind(n)
	if !k.Valid() {
		return 0, fmt.Errorf("invalid assessment kind %d", n)
	}
	return k, nil
}

// TermScore is the rolled-up score of one enrollment for one assessment kind.
type TermScore struct {
	ID               int64          `db:"id" json:"id"`
	TermEnrollmentID int64          `db:"term_enrollment_id" json:"term_enrollment_id"`
	AssessmentKind   AssessmentKind `db:"assessment_kind" json:"assessment_kind"`
	Score            float64        `db:"score" json:"score"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// QuestionScore is the stored contribution of one question.
type QuestionScore struct {
	ID               int64     `db:"id" json:"id"`
	TermEnrollmentID int64     `db:"term_enrollment_id" json:"term_enrollment_id"`
	QuestionNumber   int       `db:"question_number" json:"question_number"`
	Score            float64   `db:"score" json:"score"`
	Weight           float64   `db:"weight" json:"weight"`
	CreatedAt        time.Time `db:"created_at" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

// QuestionEntry is a validated question ready to be stored. Score already
// holds the weighted contribution.
type QuestionEntry struct {
	QuestionNumber int
	Score          float64
	Weight         float64
}

// QuestionBatch is one per-question submission for a student and term.
type QuestionBatch struct {
	StudentID int64
	TermID    int64
	Kind      AssessmentKind
	Questions []QuestionEntry
	SkillIDs  []int64
}

// MaxStoredScore is the largest value term_scores.score (NUMERIC(6,2)) holds.
const MaxStoredScore = 9999.99

// ErrScoreOutOfRange reports a rolled-up score the store cannot hold.
var ErrScoreOutOfRange = errors.New("score exceeds the storable range")

// NormalizeFunc turns the raw sum of contributions and the number of stored
// questions into the final score.
type NormalizeFunc func(sum float64, count int) float64

// QuestionSubmission reports what a question batch persisted.
type QuestionSubmission struct {
	TermEnrollmentID int64   `json:"term_enrollment_id"`
	RawTotal         float64 `json:"raw_total"`
	QuestionCount    int     `json:"question_count"`
	FinalScore       float64 `json:"final_score"`
}

// QuestionScoreSummary is the read view of a student's per-question scores.
type QuestionScoreSummary struct {
	StudentID      int64           `json:"student_id"`
	TermID         int64           `json:"term_id"`
	AssessmentKind *AssessmentKind `json:"assessment_kind"`
	Questions      []QuestionScore `json:"questions"`
	Total          float64         `json:"total"`
	Skills         []Skill         `json:"skills"`
}
