package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestDebugDisabled(t *testing.T) {
	buf := captureDebug(t)

	DebugHeader(false)
	DebugOutput(false, "scored %d", 3)
	DebugTiming(false, "build")()
	DebugFooter(false)

	assert.Empty(t, buf.String())
}

func TestDebugEnabled(t *testing.T) {
	buf := captureDebug(t)

	DebugHeader(true)
	DebugOutput(true, "scored %d", 3)
	DebugTiming(true, "build")()
	DebugFooter(true)

	out := buf.String()
	assert.Contains(t, out, "DEBUG START")
	assert.Contains(t, out, "scored 3")
	assert.Contains(t, out, "operation=build")
	assert.Contains(t, out, "DEBUG END")
}
