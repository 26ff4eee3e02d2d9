package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	l := New("json", "not-a-level")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l = New("console", "debug")
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := Component(zerolog.New(&buf), "http")

	r := gin.New()
	r.Use(GinMiddleware(l))
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusTeapot, "x") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http_request", line["message"])
	assert.Equal(t, "http", line["component"])
	assert.Equal(t, "/ping/:id", line["route"])
	assert.Equal(t, "/ping/1", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
}
