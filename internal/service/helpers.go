package service

import (
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/pkg/database"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func validationError(err error, message string) *appErrors.Error {
	e := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		e.Details = fields
	}
	return e
}

func invalid(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func notFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// loadError maps a lookup failure: a missing row becomes a 404.
func loadError(err error, missing, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(missing)
	}
	return appErrors.Internal(err, failure)
}

// writeError maps an insert or update failure. A dangling reference becomes a
// 404 and a duplicate key a 409.
func writeError(err error, missing, failure string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(missing)
	case database.IsForeignKeyViolation(err):
		return notFound("referenced record not found")
	case database.IsUniqueViolation(err):
		return appErrors.Clone(appErrors.ErrConflict, "record already exists")
	default:
		return appErrors.Internal(err, failure)
	}
}

// deleteError maps a delete failure. Rows still referenced by others cannot
// be removed.
func deleteError(err error, missing, failure string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(missing)
	case database.IsForeignKeyViolation(err):
		return appErrors.Clone(appErrors.ErrConflict, "record is still referenced")
	default:
		return appErrors.Internal(err, failure)
	}
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalid("dates must use the YYYY-MM-DD format")
	}
	return &t, nil
}

// roundScore rounds half away from zero to two decimals.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
