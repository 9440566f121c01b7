package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		expectedLevel  string
		expectedStatus int
	}{
		{name: "GET request with 200 OK", method: http.MethodGet, path: "/api/v1/sync/fetch", expectedStatus: http.StatusOK, expectedLevel: "INFO"},
		{name: "Request with 404 Not Found", method: http.MethodGet, path: "/api/v1/nonexistent", expectedStatus: http.StatusNotFound, expectedLevel: "WARN"},
		{name: "Request with 500 Internal Server Error", method: http.MethodPost, path: "/api/v1/sync/submit", expectedStatus: http.StatusInternalServerError, expectedLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf strings.Builder
			logger := slog.New(slog.NewTextHandler(&logBuf, nil))

			handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.expectedStatus)
				_, _ = w.Write([]byte("Hello, World!")) // 13 bytes
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "192.168.1.1:12345"
			req.Header.Set("User-Agent", "TestAgent/1.0")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, "HTTP request")
			assert.Contains(t, logOutput, "level="+tt.expectedLevel)
			assert.Contains(t, logOutput, tt.method)
			assert.Contains(t, logOutput, tt.path)
			assert.Contains(t, logOutput, "192.168.1.1:12345")
			assert.Contains(t, logOutput, "TestAgent/1.0")
			assert.Contains(t, logOutput, "bytes_written=13")
			assert.Contains(t, logOutput, "duration_ms=")
			assert.Contains(t, logOutput, "request_id="+w.Header().Get(HeaderRequestID))
		})
	}
}

func TestLoggingMiddleware_KeepsRequestID(t *testing.T) {
	handler := LoggingMiddleware(setupTestLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestLoggingMiddleware_SkipPaths(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	handler := LoggingMiddleware(logger, "/api/v1/health")(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Empty(t, logBuf.String(), "health checks should not be logged")

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sync/fetch", nil))
	assert.Contains(t, logBuf.String(), "/api/v1/sync/fetch")
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	n, err := rw.Write([]byte("short and stout"))

	assert.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, int64(15), rw.written)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
