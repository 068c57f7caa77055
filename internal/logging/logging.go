// Package logging configures the process-wide structured logger.
package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the shared logger instance used across the bot.
var Logger = log.NewWithOptions(os.Stdout, log.Options{
	ReportTimestamp: true,
})

// Configure sets the log level from a string ("debug", "info", "warn",
// "error"). Unknown values fall back to info.
func Configure(level string) {
	Logger.SetLevel(parseLevel(level))
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
