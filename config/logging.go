package config

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// LogWriter is the writer used for application, access and database logs.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "review-api.log")
}

// InitLogging prepares the log file and routes the standard logger and the
// default slog logger through it.
func InitLogging() (*os.File, io.Writer) {
	logPath := filepath.Dir(LogFilePath())
	if err := os.MkdirAll(logPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file: %v", err)
		LogWriter = os.Stdout
		installLoggers(LogWriter)
		return nil, LogWriter
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	installLoggers(LogWriter)
	return logFile, LogWriter
}

func installLoggers(w io.Writer) {
	log.SetOutput(w)

	level := slog.LevelInfo
	if App.IsProduction() {
		level = slog.LevelWarn
	}
	if App.DebugSQL {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
