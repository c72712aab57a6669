package logging

import (
	"log/slog"
	"os"
)

// Config controls the process-wide logger.
type Config struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
}

// Setup installs the global slog logger with a text handler on stdout.
func Setup(cfg *Config, serviceName string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
