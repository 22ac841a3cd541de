package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/dept-timetable-api/pkg/config"
	"github.com/noah-isme/dept-timetable-api/pkg/middleware/requestid"
)

func TestGinMiddlewareLevelsAndFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(GinMiddleware(zap.New(core)))
	r.PATCH("/timetables/:id/entries/:blockId", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/timetables/tt-1/entries/b1", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	entries := logs.All()
	require.Len(t, entries, 2)

	conflict := entries[0]
	assert.Equal(t, zapcore.WarnLevel, conflict.Level)
	fields := conflict.ContextMap()
	assert.Equal(t, "/timetables/:id/entries/:blockId", fields["route"])
	assert.Equal(t, "tt-1", fields["timetable_id"])
	assert.Equal(t, "b1", fields["block_id"])
	assert.Equal(t, "req-42", fields["request_id"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "timetable_id")
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "loud", Format: "console"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
