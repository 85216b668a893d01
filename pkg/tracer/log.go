package tracer

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type LogLevel int

const (
	LogOff LogLevel = iota
	LogInfo
	LogDebug
)

var (
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	level  = levelFromEnv()
)

func levelFromEnv() LogLevel {
	if os.Getenv("GTRACE_DEBUG") != "" {
		return LogDebug
	}
	l, _ := ParseLogLevel(os.Getenv("GTRACE_LOG_LEVEL"))
	return l
}

// ParseLogLevel accepts off, info or debug and the numeric and alias forms
// of each. Unknown values map to LogOff.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none", "0":
		return LogOff, nil
	case "info", "1":
		return LogInfo, nil
	case "debug", "verbose", "2":
		return LogDebug, nil
	default:
		return LogOff, fmt.Errorf("unknown log level: %s", s)
	}
}

// SetLogging replaces the package logger and level. A nil logger keeps the
// current one.
func SetLogging(l *slog.Logger, lvl LogLevel) {
	if l != nil {
		logger = l
	}
	level = lvl
}

// Logger returns the package logger, for collaborators that want to log in
// the same stream.
func Logger() *slog.Logger { return logger }

func debugf(format string, args ...interface{}) {
	if level < LogDebug {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}

func logInfo(msg string, args ...any) {
	if level < LogInfo {
		return
	}
	logger.Info(msg, args...)
}
