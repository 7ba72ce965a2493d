package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConfigureLogger sets the global logrus level and formatter.
// Debug level switches to the human readable text formatter.
func ConfigureLogger(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(lvl)
	if lvl >= logrus.DebugLevel {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

// Logger returns an entry tagged with module/action/request_id.
func Logger(requestID, module, action string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"module":     strings.ToLower(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	})
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	Logger(requestID, module, action).Info(message)
}
