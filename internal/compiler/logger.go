package compiler

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger provides verbose output for analysis decisions during compilation.
// Loggers derived with Named share the writer and its lock, so concurrent
// compilations never interleave within a line.
type Logger struct {
	enabled bool
	out     io.Writer
	mu      *sync.Mutex
	prefix  string
}

// NewLogger creates a new logger instance.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		out:     os.Stderr,
		mu:      &sync.Mutex{},
		prefix:  "[regtag] ",
	}
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// Named returns a logger that tags every line with name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		enabled: l.enabled,
		out:     l.out,
		mu:      l.mu,
		prefix:  fmt.Sprintf("[regtag:%s] ", name),
	}
}

// Log prints a formatted message if verbose mode is enabled.
func (l *Logger) Log(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, l.prefix+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "\n%s=== %s ===\n", l.prefix, name)
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
