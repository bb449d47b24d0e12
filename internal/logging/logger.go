// Package logging provides the shared console sink for batch workers:
// leveled, optionally colored, guarded by a mutex so concurrent jobs
// never interleave partial lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ANSI color codes, empty when color is disabled on a stream.
type palette struct {
	red    string
	green  string
	yellow string
	blue   string
	reset  string
}

var ansiPalette = palette{
	red:    "\033[1;91m",
	green:  "\033[1;92m",
	yellow: "\033[1;93m",
	blue:   "\033[1;94m",
	reset:  "\033[0m",
}

func (p palette) colorFor(level string) string {
	switch level {
	case "INFO":
		return p.blue
	case "OK":
		return p.green
	case "WARN":
		return p.yellow
	case "ERROR":
		return p.red
	}
	return ""
}

// Logger provides leveled logging with an optional file sink. Quiet mode
// suppresses Info and Success; Warn and Error are always emitted. Info,
// Success and Warn go to stdout, Error to stderr, each with color
// detected on its own stream.
type Logger struct {
	mu     sync.Mutex
	quiet  bool
	file   *os.File
	out    *os.File
	errOut *os.File
	outPal palette
	errPal palette
}

// New builds a Logger. If logFile is non-empty the plain (uncolored)
// lines are also appended there; call Close when done.
func New(quiet bool, logFile string) (*Logger, error) {
	l := &Logger{quiet: quiet, out: os.Stdout, errOut: os.Stderr}
	if colorEnabled(os.Stdout) {
		l.outPal = ansiPalette
	}
	if colorEnabled(os.Stderr) {
		l.errPal = ansiPalette
	}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// colorEnabled reports whether ANSI color should be emitted on f: the
// stream is a terminal, NO_COLOR is unset, and TERM is not "dumb".
func colorEnabled(f *os.File) bool {
	return isTerminal(f) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Close closes the file sink if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out, pal := l.out, l.outPal
	if level == "ERROR" {
		out, pal = l.errOut, l.errPal
	}

	plain := "[" + level + "] " + text + "\n"
	if c := pal.colorFor(level); c != "" {
		_, _ = io.WriteString(out, c+"["+level+"]"+pal.reset+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs progress lines; suppressed in quiet mode.
func (l *Logger) Info(format string, args ...any) {
	if l.quiet {
		return
	}
	l.line("INFO", fmt.Sprintf(format, args...))
}

// Success logs per-job completion; suppressed in quiet mode.
func (l *Logger) Success(format string, args ...any) {
	if l.quiet {
		return
	}
	l.line("OK", fmt.Sprintf(format, args...))
}

// Warn logs non-fatal conditions; always emitted.
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN", fmt.Sprintf(format, args...))
}

// Error logs job failures to stderr; always emitted.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", fmt.Sprintf(format, args...))
}
