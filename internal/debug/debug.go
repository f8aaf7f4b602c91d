package debug

import (
	"fmt"
	"log/slog"
	"time"
)

// DebugHeader logs a header line if debugging is enabled
func DebugHeader(enabled bool) {
	if enabled {
		slog.Debug("=== DEBUG START ===")
	}
}

// DebugFooter logs a footer line if debugging is enabled
func DebugFooter(enabled bool) {
	if enabled {
		slog.Debug("=== DEBUG END ===")
	}
}

// DebugOutput logs a formatted message if debugging is enabled
func DebugOutput(enabled bool, format string, args ...interface{}) {
	if enabled {
		slog.Debug(fmt.Sprintf(format, args...))
	}
}

// DebugTiming measures and logs execution time if debugging is enabled
func DebugTiming(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	slog.Debug("Starting", slog.String("operation", operation))

	return func() {
		slog.Debug("Completed", slog.String("operation", operation), slog.Duration("took", time.Since(start)))
	}
}
