// Package logger provides the process-wide structured logger for pgtps.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global structured logger.
	Log *slog.Logger
	// logWriter is the rotating log writer, non-nil only when a log file is configured.
	logWriter *lumberjack.Logger
)

// Level mirrors slog's levels so callers don't need to import log/slog directly.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger. With an empty logPath, human-readable
// text is written to stderr. With a non-empty logPath, JSON records are
// written to a lumberjack-rotated file instead, keeping stdout free for the
// probe's table output.
func Init(level Level, logPath string) {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}

	var handler slog.Handler
	if logPath == "" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		logWriter = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		var w io.Writer = logWriter
		handler = slog.NewJSONHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// Close flushes and closes the rotating log file, if one is open.
func Close() {
	if logWriter != nil {
		_ = logWriter.Close()
	}
}

func getLogger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return slog.Default()
}

func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { getLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { getLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }

// With returns a logger with the given attributes attached to every record.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}
