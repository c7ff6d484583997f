// Package testlog provides a log handler for unit tests.
package testlog

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// Testing interface to log to. Some functions are marked as Helper function to log the call site accurately.
// Standard Go testing.TB implements this.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	Name() string
	Cleanup(func())
}

// testWriter forwards complete log lines to the unit test log.
// Lines written after the test finished are dropped, since t.Logf panics at that point.
type testWriter struct {
	t    Testing
	mu   sync.Mutex
	done bool
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return len(p), nil
	}
	w.t.Helper()
	w.t.Logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (w *testWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done = true
}

// Logger returns a logger which logs to the unit test log of t.
func Logger(t Testing, level slog.Level) log.Logger {
	return LoggerWithHandlerMod(t, level)
}

// LoggerWithHandlerMod is like Logger, but wraps the handler with the given modifiers, innermost first.
func LoggerWithHandlerMod(t Testing, level slog.Level, handlerMods ...func(slog.Handler) slog.Handler) log.Logger {
	w := &testWriter{t: t}
	t.Cleanup(w.close)
	var handler slog.Handler = log.NewTerminalHandlerWithLevel(w, level, false)
	for _, mod := range handlerMods {
		handler = mod(handler)
	}
	return log.NewLogger(handler)
}
