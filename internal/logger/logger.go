// Package logger initializes the process-wide logrus logger the same
// way every cmd/main.go entry point in this repo expects: a level
// parsed from internal/config's LogLevel* constants, a timestamped
// text formatter, and output to stderr. InitFileLogger additionally
// duplicates output to a file such as config.LogFilePath when that
// path's directory can be created and the file opened (staying on
// stderr only otherwise, so a read-only filesystem never blocks
// startup).
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger for the given level
// (one of config.LogLevel*).
func InitLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger: invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	return nil
}

// InitFileLogger behaves like InitLogger but additionally duplicates
// output to the file at path, creating its parent directory if
// necessary. Used by long-running commands (serve) that want a
// durable log alongside stderr.
func InitFileLogger(level, path string) error {
	if err := InitLogger(level); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logrus.Warnf("logger: could not create log directory %s: %v, logging to stderr only", dir, err)
			return nil
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.Warnf("logger: could not open log file %s: %v, logging to stderr only", path, err)
		return nil
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}
