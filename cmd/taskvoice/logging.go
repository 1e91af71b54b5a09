package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"taskvoice/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger 按配置创建日志：json 写入日志文件，console 写到 stderr
// newLogger builds the process logger: json goes to the log file, console to stderr
func newLogger(cfg config.Config, verbose bool, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	if cfg.Log.Format == "console" {
		w := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nopCloser{}, nil
	}

	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}
