package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, handler := NewCaptureLogger()

	logger.Info("refresh complete", slog.Int("rows", 42))
	logger.Error("source load failed", slog.String("source", "csv"))

	entries := handler.Entries()
	require.Len(t, entries, 2)

	assert.True(t, handler.HasMessage("refresh complete"))
	assert.True(t, handler.HasAttr("rows", int64(42)))
	assert.False(t, handler.HasMessage("never logged"))

	errs := handler.ByLevel(slog.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "source load failed", errs[0].Message)
}

func TestCaptureHandlerWithAttrs(t *testing.T) {
	logger, handler := NewCaptureLogger()

	derived := logger.With(slog.String("component", "loader"))
	derived.Warn("sheet missing")

	require.Len(t, handler.Entries(), 1)
	assert.True(t, handler.HasAttr("component", "loader"))
	AssertLogged(t, handler, slog.LevelWarn, "sheet missing")
}
