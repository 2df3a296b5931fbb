// Package logging configures the logrus logger shared by the diseqc tools.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a logrus entry carrying the command name, plus the log file it
// may own.
type Logger struct {
	*logrus.Entry
	file *os.File
}

// New creates a logger writing to w.
func New(name string, level logrus.Level, w io.Writer) *Logger {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Level = level
	log.SetOutput(w)
	return &Logger{Entry: log.WithField("cmd", name)}
}

// NewWithFile creates a logger writing to stderr and, if logFile is set,
// appending to logFile as well.
func NewWithFile(name string, level logrus.Level, logFile string) (*Logger, error) {
	if logFile == "" {
		return New(name, level, os.Stderr), nil
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := New(name, level, io.MultiWriter(os.Stderr, file))
	// Keep escape codes out of the file.
	l.Logger.Formatter.(*logrus.TextFormatter).DisableColors = true
	l.file = file
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.Logger.SetOutput(os.Stderr)
	err := l.file.Close()
	l.file = nil
	return err
}
