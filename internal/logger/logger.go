// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance. It is usable before Init is called.
var Log = logrus.New()

var (
	mu      sync.Mutex
	logFile *os.File // file opened by the last Init, if any
)

// Formatter renders entries as "[time] [LEVL] message key=value ...".
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", entry.Time.Format("2006-01-02 15:04:05"), level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// newLogger builds a logger writing to out and, when file is set, also
// appending to that file, which is returned for the caller to close.
// format is "text" (default) or "json". Unknown levels fall back to info.
func newLogger(level, format, file string, out io.Writer) (*logrus.Logger, *os.File, error) {
	l := logrus.New()

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	case "", "text":
		l.SetFormatter(&Formatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{out}
	var f *os.File
	if file != "" {
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err = os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l, f, nil
}

// Init replaces the global logger. Output goes to stderr so command output
// on stdout stays clean. A log file opened by a previous Init is closed.
func Init(level, format, file string) error {
	l, f, err := newLogger(level, format, file, os.Stderr)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	Log = l
	return swapFile(f)
}

// Close releases the log file opened by Init, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return swapFile(nil)
}

func swapFile(f *os.File) error {
	prev := logFile
	logFile = f
	if prev == nil {
		return nil
	}
	return prev.Close()
}
