package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climbingpill/internal/infrastructure"
	"climbingpill/internal/shared/testutil"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		assert.Equal(t, captured, infrastructure.GetTraceID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDPreservesHeader(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "client-supplied-id", captured)
}

func TestRequestIDKeyDoesNotCollideWithStringKeys(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "outside-value", r.Context().Value("request-id"))
		assert.NotEqual(t, "outside-value", GetRequestID(r.Context()))
		assert.NotEmpty(t, GetRequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req = req.WithContext(context.WithValue(req.Context(), "request-id", "outside-value")) //nolint:staticcheck
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestStructuredLoggerLogsRequestLifecycle(t *testing.T) {
	logger, captured := testutil.NewCaptureLogger()

	handler := RequestID(StructuredLogger(logger)(noopHandler()))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	testutil.AssertLogged(t, captured, slog.LevelInfo, "request started")
	testutil.AssertLogged(t, captured, slog.LevelInfo, "request completed")
	assert.True(t, captured.HasAttr("method", "GET"))
	assert.True(t, captured.HasAttr("path", "/api/analytics"))
	assert.True(t, captured.HasAttr("status", int64(http.StatusOK)))

	for _, e := range captured.Entries() {
		assert.NotEmpty(t, e.Attrs["trace_id"], "request logs should carry the trace id")
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 1, testLogger())
	handler := rl.Handler(noopHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://dashboard.example.com"}})(noopHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/analytics", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://dashboard.example.com"}})(noopHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	assert.Equal(t, "10.1.2.3", GetRealIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.4.5.6")
	assert.Equal(t, "10.4.5.6", GetRealIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, req.RemoteAddr, GetRealIP(req))
}
