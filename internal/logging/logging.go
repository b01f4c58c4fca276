// Package logging centralizes logger construction so every package logs
// with the same level and format. The packages themselves hold a local
// logrus instance behind SetLogger; this package builds the one logger
// that gets fanned out to them.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logger from a level and format string. Unknown levels fall
// back to info, unknown formats to text.
func New(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// SetAllLogLevels forces the level on the global logrus instance, which
// every logger created before configuration ran inherits from.
func SetAllLogLevels(level logrus.Level) {
	logrus.SetLevel(level)
}

// ParseLevel parses a level string, defaulting to info instead of failing.
func ParseLevel(level string) logrus.Level {
	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return logLevel
}
