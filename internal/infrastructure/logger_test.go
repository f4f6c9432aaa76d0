package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climbingpill/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file was not created")

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &logEntry), "log output is not valid JSON")

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
	assert.Equal(t, "INFO", logEntry["level"])
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(&traceHandler{Handler: handler})

	ctx := WithTraceID(context.Background(), "trace-abc-123")
	logger.InfoContext(ctx, "handling request")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "trace-abc-123", logEntry["trace_id"])
}

func TestTraceIDInjectionAbsent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(&traceHandler{Handler: handler})

	logger.InfoContext(context.Background(), "no trace")

	assert.False(t, strings.Contains(buf.String(), "trace_id"))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	first := GetTraceID(ctx)
	require.NotEmpty(t, first)

	// Already present, must not be replaced.
	ctx = EnsureTraceID(ctx)
	assert.Equal(t, first, GetTraceID(ctx))
}

func TestGetTraceIDMissing(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestLoggerFromContext(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	ctx := WithTraceID(context.Background(), "trace-abc")
	logger := LoggerFromContext(ctx)
	require.NotNil(t, logger)

	// Without a trace ID the global logger is returned as is.
	assert.NotNil(t, LoggerFromContext(context.Background()))
}
