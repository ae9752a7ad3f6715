package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = newLogger("info")

func newLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Init replaces the process logger. Call once from main after config is loaded.
func Init(level string) {
	logg = newLogger(level)
}

// Get returns the process-wide logger.
func Get() *logrus.Logger {
	return logg
}

// LogError writes an error with the module/function/context triple used across services.
func LogError(moduleName, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}

// LogWarn is LogError at warn level, for best-effort work that failed without affecting the caller.
func LogWarn(moduleName, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Warn(err.Error())
}
