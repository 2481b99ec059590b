// ABOUTME: Structured logger implementation backed by logrus
// ABOUTME: Writes JSON or text records to stdout or a rotating lumberjack file

package structured

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"bookshelf-api/pkg/config"
)

// Logger implements interfaces.Logger on top of a logrus logger
type Logger struct {
	entry  *logrus.Logger
	closer io.Closer
}

// NewLogger builds a logger from the log configuration. When cfg.File is set,
// records go to a rotating file instead of stdout.
func NewLogger(cfg config.LogConfig) *Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := &Logger{entry: l}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		l.SetOutput(rotator)
		logger.closer = rotator
	} else {
		l.SetOutput(os.Stdout)
	}

	return logger
}

// NewWithWriter creates a JSON logger writing to w, used by tests and embedders
func NewWithWriter(w io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(parseLevel(level))
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{entry: l}
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}

// Close flushes and closes the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
