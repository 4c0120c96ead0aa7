package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)

	// With returns a logger which attaches the given key-value pair to every
	// line.
	With(key string, value any) Logger
}

type defaultLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a text logger writing to stderr. An unknown level falls
// back to info.
func NewLogger(level string) *defaultLogger {
	return NewLoggerWithWriter(level, os.Stderr)
}

func NewLoggerWithWriter(level string, w io.Writer) *defaultLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &defaultLogger{entry: logrus.NewEntry(l)}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.entry.Debugf(msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.entry.Infof(msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.entry.Warnf(msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.entry.Errorf(msg, a...)
}

func (l *defaultLogger) With(key string, value any) Logger {
	return &defaultLogger{entry: l.entry.WithField(key, value)}
}

type silenceLogger struct{}

// NewSilenceLogger discards everything, tests use it to keep output clean.
func NewSilenceLogger() *silenceLogger {
	return &silenceLogger{}
}

func (silenceLogger) Debugf(string, ...any) {}
func (silenceLogger) Infof(string, ...any)  {}
func (silenceLogger) Warnf(string, ...any)  {}
func (silenceLogger) Errorf(string, ...any) {}

func (l silenceLogger) With(string, any) Logger {
	return l
}
