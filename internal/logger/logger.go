// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxLogFileSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Options selects where and how the logger writes.
type Options struct {
	Level string    // zerolog level name, defaults to info
	JSON  bool      // structured lines instead of the console writer
	Out   io.Writer // defaults to stdout
}

// Init installs the global logger for the server.
func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// InitFile sends logs to <home>/<appDir>/debug.log so a terminal UI keeps the
// screen to itself. The file is rotated once it passes 10MB.
func InitFile(appDir string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, appDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(logDir, "debug.log")
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogFileSize {
		backupPath := filepath.Join(logDir, fmt.Sprintf("debug.log.%d", time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = zerolog.New(logFile).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Info().Str("path", logPath).Msg("logger initialized")
	return nil
}

// Close closes the log file opened by InitFile.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogPanic records a recovered panic with its stack.
func LogPanic(r any) {
	log.Error().
		Str("panic", fmt.Sprint(r)).
		Str("stack", string(debug.Stack())).
		Msg("recovered from panic")
}

// GetLogPath returns the file opened by InitFile.
func GetLogPath() string {
	return logPath
}
