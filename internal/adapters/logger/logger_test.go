package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("dispatching goal")

	assert.Equal(t, "dispatching goal\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("stale goal version")

	assert.Equal(t, "! stale goal version\n", buf.String())
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_Error_ZerrChain(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(zerr.Wrap(
		zerr.Wrap(errors.New("connection refused"), "failed to read parent pod"),
		"failed to schedule goal",
	))

	out := buf.String()
	assert.Contains(t, out, "Error: failed to schedule goal")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ failed to read parent pod")
	assert.Contains(t, out, "→ connection refused")
}

func TestLogger_Error_StdlibError(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(errors.New("line1\nline2"))

	assert.Contains(t, buf.String(), "Error: line1\n       line2")
	assert.NotContains(t, buf.String(), "Caused by:")
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("hello")
	lg.Error(zerr.Wrap(errors.New("boom"), "dispatch failed"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "hello", info["msg"])

	var errLine map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &errLine))
	assert.Equal(t, "ERROR", errLine["level"])
	assert.Equal(t, "dispatch failed", errLine["msg"])
	assert.Contains(t, errLine["error"], "boom")
}

func TestCollectErrorEntries(t *testing.T) {
	entries := logger.CollectErrorEntries(zerr.Wrap(errors.New("root cause"), "outer layer"))

	require.Len(t, entries, 2)
	assert.Equal(t, "outer layer", entries[0].Message())
	assert.Equal(t, "root cause", entries[1].Message())
}

func TestFormatErrorEntries(t *testing.T) {
	entries := logger.CollectErrorEntries(errors.New("simple"))
	assert.Equal(t, "Error: simple", logger.FormatErrorEntries(entries))
}
