// Package logging configures the process-wide logrus logger.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel keeps diagnostic logs out of the way of console output.
const DefaultLevel = "warn"

type ctxKey struct{}

// WithRunID tags ctx so log entries made with log.WithContext(ctx) carry
// the provisioning run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, runID)
}

// RunID returns the run ID stored by WithRunID, if any.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Init parses and sets the log level and output. An empty logPath or
// "console" logs to stderr; anything else is a rotated file.
func Init(logLevel string, logPath string) error {
	if logLevel == "" {
		logLevel = DefaultLevel
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Errorf("Failed parsing log-level %s: %s", logLevel, err)
		return err
	}

	log.SetOutput(output(logPath))
	log.SetFormatter(&Formatter{})
	log.SetLevel(level)
	return nil
}

func output(logPath string) io.Writer {
	if logPath == "" || logPath == "console" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		// Log file absolute path, os agnostic
		Filename:   filepath.ToSlash(logPath),
		MaxSize:    5, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// Formatter is a text formatter that adds the run ID from the entry's
// context.
type Formatter struct {
	log.TextFormatter
}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Context != nil {
		if id := RunID(entry.Context); id != "" {
			entry.Data["run"] = id
		}
	}
	return f.TextFormatter.Format(entry)
}
