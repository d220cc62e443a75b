package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// InitLogging installs the default slog logger: a text handler on stdout,
// optionally duplicated into a log file. The returned function closes the
// log file, if any.
func InitLogging(level string, filePath string) (func(), error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "", "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	var writer io.Writer = os.Stdout
	closer := func() {}

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		writer = io.MultiWriter(os.Stdout, file)
		closer = func() { file.Close() }
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))

	return closer, nil
}
