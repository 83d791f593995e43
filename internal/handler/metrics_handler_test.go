package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-grading-api/internal/service"
)

type pingerStub struct {
	err error
}

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func newHealthRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	return r
}

func TestMetricsHandlerHealth(t *testing.T) {
	r := newHealthRouter(NewMetricsHandler(service.NewMetricsService(), pingerStub{}))
	w := perform(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeEnvelope(t, w)["data"].(map[string]interface{})["status"])
}

func TestMetricsHandlerReady(t *testing.T) {
	r := newHealthRouter(NewMetricsHandler(service.NewMetricsService(), pingerStub{}))
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready", "").Code)

	r = newHealthRouter(NewMetricsHandler(service.NewMetricsService(), pingerStub{err: errors.New("connection refused")}))
	w := perform(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NOT_READY", decodeEnvelope(t, w)["error"].(map[string]interface{})["code"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordScoreSubmission("holistic", "created")
	r := newHealthRouter(NewMetricsHandler(metrics, nil))

	w := perform(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "score_submissions_total")
}
