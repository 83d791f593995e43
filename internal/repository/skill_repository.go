package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const skillColumns = "id, subject_id, name, description, created_at, updated_at"

// SkillRepository handles persistence for the skill catalog.
type SkillRepository struct {
	db *sqlx.DB
}

// NewSkillRepository constructs a SkillRepository.
func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// List returns the whole catalog.
func (r *SkillRepository) List(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, "SELECT "+skillColumns+" FROM skills ORDER BY name ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// FindByID fetches a skill by ID.
func (r *SkillRepository) FindByID(ctx context.Context, id int64) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.GetContext(ctx, &skill, "SELECT "+skillColumns+" FROM skills WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &skill, nil
}

// FindByName fetches a skill by exact name within a subject. A nil subject
// matches skills that are not bound to any subject.
func (r *SkillRepository) FindByName(ctx context.Context, name string, subjectID *int64) (*models.Skill, error) {
	query := "SELECT " + skillColumns + " FROM skills WHERE name = $1 AND subject_id IS NULL"
	args := []interface{}{name}
	if subjectID != nil {
		query = "SELECT " + skillColumns + " FROM skills WHERE name = $1 AND subject_id = $2"
		args = append(args, *subjectID)
	}
	var skill models.Skill
	if err := r.db.GetContext(ctx, &skill, query+" LIMIT 1", args...); err != nil {
		return nil, err
	}
	return &skill, nil
}

// ResolveCodes maps skill codes to catalog ids. Matching ignores case; codes
// that match nothing are absent from the result. When a code exists under
// several subjects the oldest skill wins.
func (r *SkillRepository) ResolveCodes(ctx context.Context, codes []string) (map[string]int64, error) {
	result := make(map[string]int64, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	upper := make([]string, len(codes))
	for i, code := range codes {
		upper[i] = strings.ToUpper(code)
	}

	const query = `SELECT DISTINCT ON (UPPER(name)) UPPER(name) AS code, id
        FROM skills
        WHERE UPPER(name) = ANY($1)
        ORDER BY UPPER(name), id ASC`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(upper))
	if err != nil {
		return nil, fmt.Errorf("resolve skill codes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var id int64
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("scan skill code: %w", err)
		}
		result[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skill codes: %w", err)
	}
	return result, nil
}

// ListByStudent returns every skill a student exercised, across terms.
func (r *SkillRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentSkill, error) {
	const query = `SELECT sk.id AS skill_id, sk.name, sk.description, sk.subject_id, te.term_id
        FROM skill_performances sp
        JOIN term_enrollments te ON te.id = sp.term_enrollment_id
        JOIN skills sk ON sk.id = sp.skill_id
        WHERE te.student_id = $1
        ORDER BY te.term_id ASC, sk.name ASC`
	var skills []models.StudentSkill
	if err := r.db.SelectContext(ctx, &skills, query, studentID); err != nil {
		return nil, fmt.Errorf("list skills by student: %w", err)
	}
	return skills, nil
}

// ListByStudentTerm returns the distinct skills a student exercised in a term.
func (r *SkillRepository) ListByStudentTerm(ctx context.Context, studentID, termID int64) ([]models.Skill, error) {
	const query = `SELECT DISTINCT sk.id, sk.subject_id, sk.name, sk.description, sk.created_at, sk.updated_at
        FROM skill_performances sp
        JOIN term_enrollments te ON te.id = sp.term_enrollment_id
        JOIN skills sk ON sk.id = sp.skill_id
        WHERE te.student_id = $1 AND te.term_id = $2
        ORDER BY sk.name ASC, sk.id ASC`
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("list skills by student and term: %w", err)
	}
	return skills, nil
}

// Create inserts a skill.
func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	const query = `INSERT INTO skills (subject_id, name, description) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, skill.SubjectID, skill.Name, skill.Description).Scan(&skill.ID, &skill.CreatedAt, &skill.UpdatedAt); err != nil {
		return fmt.Errorf("create skill: %w", err)
	}
	return nil
}

// Update modifies a skill.
func (r *SkillRepository) Update(ctx context.Context, skill *models.Skill) error {
	const query = `UPDATE skills SET subject_id = $1, name = $2, description = $3, updated_at = NOW() WHERE id = $4 RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, skill.SubjectID, skill.Name, skill.Description, skill.ID).Scan(&skill.CreatedAt, &skill.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update skill: %w", err)
	}
	return nil
}

// Delete removes a skill.
func (r *SkillRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "skills", id)
}
