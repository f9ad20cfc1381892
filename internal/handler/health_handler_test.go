package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats map[string]interface{}

func (s staticStats) Metrics() map[string]interface{} { return s }

func healthRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Detailed)
	return r
}

func TestHealthDetailed_IncludesLiveFeedMetrics(t *testing.T) {
	h := NewHealthHandler(CheckFunc{CheckName: "database", Fn: func(context.Context) error { return nil }}).
		WithLiveFeed(staticStats{"clients": 3, "messages_dropped": 0})

	w := doRequest(healthRouter(h), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok"}, body["checks"])
	feed, ok := body["live_feed"].(map[string]interface{})
	require.True(t, ok, "live_feed missing: %s", w.Body.String())
	assert.EqualValues(t, 3, feed["clients"])
}

func TestHealthDetailed_DegradedWithoutLiveFeed(t *testing.T) {
	h := NewHealthHandler(
		CheckFunc{CheckName: "database", Fn: func(context.Context) error { return nil }},
		CheckFunc{CheckName: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }},
	)

	w := doRequest(healthRouter(h), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]interface{})["redis"])
	assert.NotContains(t, body, "live_feed")
}
