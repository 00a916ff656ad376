// Package logging configures the central logger for the pixelmill MCP server.
//
// All log output goes to a rotating file under logs/ plus a human-readable
// console writer on stderr. Stdout is never used: it carries the MCP
// protocol stream.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLogFile is the rotating log file path, relative to the working directory.
const DefaultLogFile = "logs/pixelmill.log"

// EnvLogLevel is the environment variable controlling the log level
// (trace, debug, info, warn, error). Defaults to info.
const EnvLogLevel = "PIXELMILL_LOG_LEVEL"

// New builds the server logger writing to the given file and stderr.
//
// The file is rotated at 10 MB with 5 backups kept. If the log directory
// cannot be created the logger falls back to stderr only.
func New(logFile string) zerolog.Logger {
	if logFile == "" {
		logFile = DefaultLogFile
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var w io.Writer = console
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err == nil {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
		}
		w = zerolog.MultiLevelWriter(rotating, console)
	}

	return zerolog.New(w).Level(levelFromEnv()).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv(EnvLogLevel)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "", "info":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
