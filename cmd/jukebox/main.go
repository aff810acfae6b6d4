package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sglre6355/jukebox/internal/bot"
	_ "github.com/sglre6355/jukebox/internal/modules/music_player"
	"gopkg.in/natefinch/lumberjack.v2"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/jukebox
var version = "dev"

func main() {
	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOutput := newLogOutput(cfg)
	defer logOutput.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("starting jukebox", "version", version)

	// Create and configure bot
	b := bot.NewBot(cfg)
	b.LoadModules()

	// Start bot
	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
}

type logWriter struct {
	io.Writer
	file *lumberjack.Logger
}

func (w logWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// newLogOutput writes to stdout, and also to a rotated file when LOG_FILE is set.
func newLogOutput(cfg *bot.Config) logWriter {
	if cfg.LogFile == "" {
		return logWriter{Writer: os.Stdout}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}
	return logWriter{
		Writer: io.MultiWriter(os.Stdout, file),
		file:   file,
	}
}
