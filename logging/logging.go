// Package logging wraps slog with JSON output and subsystem tagging for the
// streampay daemon. The engine itself logs through cosmossdk.io/log; this
// package covers everything around it.
package logging

import (
	"log/slog"
	"os"
	"reflect"
)

// SubSystem tags every daemon log line with its origin.
type SubSystem string

const (
	Server  SubSystem = "server"
	Config  SubSystem = "config"
	Events  SubSystem = "events"
	Storage SubSystem = "storage"
	Oracle  SubSystem = "oracle"
	System  SubSystem = "system"
)

// Init installs the JSON handler at the given level as the default logger.
func Init(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Warn(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Warn(msg, withSubsystem...)
}

func Info(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Info(msg, withSubsystem...)
}

func Error(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)

	// Check for error values and add their types
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			if err, ok := keyvals[i+1].(error); ok {
				errorType := reflect.TypeOf(err).String()
				withSubsystem = append(withSubsystem, "error-type", errorType)
			}
		}
	}

	slog.Error(msg, withSubsystem...)
}

func Debug(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem}, keyvals...)
	slog.Debug(msg, withSubsystem...)
}
