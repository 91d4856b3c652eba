package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLogger writes every entry of an import run to a per-run log file and mirrors it
// to the console with colored levels.
type RunLogger struct {
	Logger *zap.Logger
	Path   string
	file   *os.File
}

// NewRunLogger creates dir if needed and opens a timestamped log file inside it.
// The file name has the form import-YYYYMMDD-HHMMSS.log.
func NewRunLogger(dir, prefix string, verbose bool) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoderCfg.EncodeCaller = nil

	consoleLevel := zapcore.InfoLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderCfg), zapcore.AddSync(file), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderCfg), zapcore.Lock(os.Stderr), consoleLevel),
	)

	return &RunLogger{
		Logger: zap.New(core),
		Path:   path,
		file:   file,
	}, nil
}

// Close flushes buffered entries and closes the log file.
func (l *RunLogger) Close() error {
	_ = l.Logger.Sync()
	return l.file.Close()
}
