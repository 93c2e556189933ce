// Package main is the bot entry point. It loads the configuration, wires
// the application and runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/app"
	"dreamweaver.app/sleep-bot/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== DreamWeaver bot starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Storage.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer application.Scheduler.Stop()

	log.WithFields(log.Fields{
		"env":     cfg.AppEnv,
		"storage": cfg.StorageBackend,
	}).Info("=== Bot ready ===")

	// Returns once ctx is cancelled and in-flight updates are done.
	if err := application.Bot.Start(ctx); err != nil {
		log.WithError(err).Error("Bot stopped with error")
	}

	log.Info("=== Bot stopped ===")
}

// setupLogging configures the log format.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
