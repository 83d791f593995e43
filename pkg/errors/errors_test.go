package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "student not found")
	wrapped := fmt.Errorf("lookup: %w", typed)

	got := FromError(wrapped)
	assert.Same(t, typed, got)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "NOT_FOUND", ErrNotFound.Code)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	raw := errors.New("connection refused")
	got := FromError(raw)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "connection refused", got.Details)
	assert.ErrorIs(t, got, raw)
}

func TestWithDetails(t *testing.T) {
	got := WithDetails(ErrUnknownSkills, "", []string{"H1", "H9"})

	assert.Equal(t, ErrUnknownSkills.Message, got.Message)
	assert.Equal(t, []string{"H1", "H9"}, got.Details)
	assert.Nil(t, ErrUnknownSkills.Details)
	assert.Nil(t, FromError(nil))
}
