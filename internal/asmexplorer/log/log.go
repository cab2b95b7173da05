// Package log installs the process-wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"

	"asmexplorer/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	closer      io.Closer
)

// Setup makes a charm logger the slog default. level is one of debug, info,
// warn or error; debug forces debug level. Source locations are reported
// with debug or when ASMEXPLORER_LOG_LEVEL=debug.
func Setup(level string, debug bool) {
	initOnce.Do(func() {
		lvl := logging.ParseLevel(level)
		if debug {
			lvl = charmlog.DebugLevel
		}

		lg := logging.NewLoggerAt(lvl)
		lg.SetReportCaller(debug || logging.IsDebug())
		closer = lg

		slog.SetDefault(slog.New(lg.Logger))
		initialized.Store(true)
	})
}

// Close flushes and closes a log file opened by Setup.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

func Initialized() bool {
	return initialized.Load()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
