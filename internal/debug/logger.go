package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger reports warnings and errors for one analysis run. Each message is
// written immediately and kept so the run can attach them to its result.
// A Logger is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	messages []string
}

// NewLogger returns a Logger writing to w. A nil w discards output but
// still records messages.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{w: w}
}

// NewStderrLogger returns a Logger on os.Stderr, or a discarding one in MCP
// mode so the stdio transport stays clean.
func NewStderrLogger() *Logger {
	if MCPMode {
		return NewLogger(io.Discard)
	}
	return NewLogger(os.Stderr)
}

// Warnf logs a recoverable problem located at path:line. line <= 0 omits the
// line number; an empty path omits the location.
func (l *Logger) Warnf(path string, line int, format string, args ...interface{}) {
	l.emit("WARN", path, line, format, args...)
}

// Errorf logs a failure that was handled by falling back.
func (l *Logger) Errorf(path string, line int, format string, args ...interface{}) {
	l.emit("ERROR", path, line, format, args...)
}

func (l *Logger) emit(level, path string, line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case path != "" && line > 0:
		msg = fmt.Sprintf("%s:%d: %s", path, line, msg)
	case path != "":
		msg = fmt.Sprintf("%s: %s", path, msg)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	fmt.Fprintf(l.w, "[%s] %s\n", level, msg)
}

// Messages returns a copy of everything logged so far, in order.
func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}
