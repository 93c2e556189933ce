// Command import loads sleep sessions from a REST-API export into the
// bot's database.
//
//	go run ./cmd/import -user 123456789 -file export.json
//
// Storage is selected with the same environment as the bot. Importing the
// same file twice does not create duplicates.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/app"
	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/features/members"
	"dreamweaver.app/sleep-bot/internal/features/sessions"
	"dreamweaver.app/sleep-bot/internal/features/streak"
)

func main() {
	userID := flag.Int64("user", 0, "Telegram user ID that owns the sessions")
	file := flag.String("file", "", "path to the JSON export")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	log.SetOutput(os.Stdout)

	if *userID == 0 || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadStorage()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.WithError(err).Fatal("Failed to read export")
	}
	list, err := sessions.DecodeSessions(data)
	if err != nil {
		log.WithError(err).Fatal("Failed to decode export")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer storage.Close()

	memberService := members.NewService(storage.Members, cfg)
	sessionService := sessions.NewService(storage.Sessions, cfg)

	// Sessions reference a member row. New members get their names on the first message.
	if err := memberService.Register(ctx, *userID); err != nil {
		log.WithError(err).Fatal("Failed to register member")
	}

	imported, err := sessionService.Import(ctx, *userID, list)
	if err != nil {
		log.WithError(err).Fatal("Import failed")
	}

	stats, err := streak.NewService(sessionService, memberService, cfg).StatsFor(ctx, *userID)
	if err != nil {
		log.WithError(err).Fatal("Failed to compute streak")
	}
	display := streak.Format(stats)

	log.WithFields(log.Fields{
		"user_id":  *userID,
		"file":     *file,
		"found":    humanize.Comma(int64(len(list))),
		"imported": humanize.Comma(int64(imported)),
		"skipped":  humanize.Comma(int64(len(list) - imported)),
	}).Info("Import finished")
	log.WithFields(log.Fields{
		"current": display.CurrentStreakText,
		"longest": display.LongestStreakText,
		"total":   display.TotalSessionsText,
	}).Info(common.Shorten(display.Motivation, 80))
}
