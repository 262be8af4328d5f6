package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ConsoleLogger returns a logger writing human-readable output to stderr.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

// FileLogger duplicates log output into the given file in JSON format,
// creating parent directories as needed. Falls back to console-only output
// when the file cannot be opened.
func FileLogger(level logrus.Level, path string) *logrus.Logger {
	log := ConsoleLogger(level)
	if path == "" {
		return log
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.WithError(err).Warn("failed to create log directory")
		return log
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.WithError(err).Warn("failed to open log file")
		return log
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}
