// Package logging builds the charmbracelet/log logger used for all
// diagnostics. It uses environment variables for configuration and can
// write to a timestamped file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// ParseLevel maps debug, warn and error to their levels; anything else is info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLoggerWithWriter creates a logger writing to w at the given level.
// ASMEXPLORER_LOG_PREFIX overrides the default "asmexplorer" prefix.
func NewLoggerWithWriter(w io.Writer, level log.Level) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
	})

	prefix := os.Getenv("ASMEXPLORER_LOG_PREFIX")
	if prefix == "" {
		prefix = "asmexplorer"
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a logger based on environment variables
// ASMEXPLORER_LOG_LEVEL: debug, info, warn, error (default: info)
// ASMEXPLORER_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
func NewLogger() *LoggerCloser {
	return NewLoggerAt(ParseLevel(os.Getenv("ASMEXPLORER_LOG_LEVEL")))
}

// NewLoggerAt is NewLogger with an explicit level.
func NewLoggerAt(level log.Level) *LoggerCloser {
	output := io.Writer(os.Stderr)

	if os.Getenv("ASMEXPLORER_LOG_TO_FILE") == "1" {
		timestamp := time.Now().Format("20060102-150405")
		logFile := fmt.Sprintf("asmexplorer-%s.log", timestamp)

		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			output = f
		}
		// If file creation fails, fall back to stderr
	}

	return NewLoggerWithWriter(output, level)
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return strings.EqualFold(os.Getenv("ASMEXPLORER_LOG_LEVEL"), "debug")
}
