package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/numbers/:id", func(c *gin.Context) {
		require.Same(t, FromGin(c), From(c.Request.Context()))
		From(c.Request.Context()).Info("inside")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/numbers/42", nil)
	req.Header.Set(headerRequestID, "rid-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "rid-1", w.Header().Get(headerRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &summary))
	require.Equal(t, "rid-1", summary["request_id"])
	require.Equal(t, "/numbers/:id", summary["path"])
	require.EqualValues(t, http.StatusNoContent, summary["status"])
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), From(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestNewWriter_FormatByEnv(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "production").Debug("hidden")
	NewWriter(&buf, "production").Info("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "number-inventory", line["app"])

	buf.Reset()
	NewWriter(&buf, "local").Debug("visible")
	require.Contains(t, buf.String(), "msg=visible")
}
