package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentryWithoutDSN(t *testing.T) {
	flush, err := InitSentry("", "development", "")
	require.NoError(t, err)
	assert.NotPanics(t, flush)
	assert.NotPanics(t, func() { CaptureErr(errors.New("boom"), map[string]string{"route": "/x"}) })
	assert.NotPanics(t, func() { CaptureErr(nil, nil) })
}

func TestInitSentryRejectsBadDSN(t *testing.T) {
	_, err := InitSentry("not a dsn", "development", "")
	assert.Error(t, err)
}
