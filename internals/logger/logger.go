package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger; New replaces it at boot.
var Log = New("coursemarket", "info", os.Stdout)

// New builds a JSON logrus logger tagged with the service name.
func New(service, level string, out io.Writer) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	return l.WithField("service", service)
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Init swaps the package logger and mirrors the level on logrus' standard logger.
func Init(service, level string) *logrus.Entry {
	Log = New(service, level, os.Stdout)
	logrus.SetLevel(ParseLevel(level))
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return Log
}
