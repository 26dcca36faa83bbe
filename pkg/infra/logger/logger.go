package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir        = "logs"
	logBufferSize = 32 * 1024
)

// NewLogger returns a JSON logger writing asynchronously to logs/<name>.log and
// mirroring every entry to stdout. The level comes from LOG_LEVEL (default info).
// The returned closer flushes the file writer.
func NewLogger(name string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(newFormatter())
	logger.SetLevel(levelFromEnv(os.Getenv("LOG_LEVEL")))

	logFile := filepath.Clean(filepath.Join(logDir, name+".log"))
	if !strings.HasPrefix(logFile, logDir+string(filepath.Separator)) {
		return nil, nil, fmt.Errorf("invalid log file path %q: must be in %s directory", logFile, logDir)
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	asyncWriter, err := NewAsyncFileWriter(logFile, logBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}

	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook(os.Stdout))

	return logger, asyncWriter, nil
}

// NewConsoleLogger is used when no log file can be written.
func NewConsoleLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(newFormatter())
	logger.SetLevel(levelFromEnv(os.Getenv("LOG_LEVEL")))
	logger.SetOutput(os.Stdout)
	return logger
}

func newFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	}
}

func levelFromEnv(raw string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
