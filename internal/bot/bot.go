// Package bot receives Telegram updates and routes them to the feature handlers.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/bot/filters"
	"dreamweaver.app/sleep-bot/internal/bot/middleware"
	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/features/admin"
	"dreamweaver.app/sleep-bot/internal/features/members"
	"dreamweaver.app/sleep-bot/internal/features/sessions"
	"dreamweaver.app/sleep-bot/internal/features/streak"
)

const helpText = `🌙 DreamWeaver keeps your sleep log and your streak.

/sleep: going to bed
/wake [1-5] [dream]: woke up, optional quality and dream note
/history: your recent nights
/streak: current and longest streak
/tz [Europe/Berlin]: show or set your timezone
/me: your profile

A night counts for the day it started. Going to bed before 4 am still counts for the previous evening.`

// Bot ties the update loop to the handlers.
type Bot struct {
	api    *telego.Bot
	sender common.MessageSender
	cfg    *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService *members.Service
	memberHandler *members.Handler
	sleepHandler  *sessions.Handler
	streakHandler *streak.Handler
	adminHandler  *admin.Handler

	parser *CommandParser

	// bounds concurrent update handling
	inflight chan struct{}
}

// New creates the bot with all its dependencies.
func New(
	api *telego.Bot,
	cfg *config.Config,
	memberService *members.Service,
	memberHandler *members.Handler,
	sleepHandler *sessions.Handler,
	streakHandler *streak.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		sender:        api,
		cfg:           cfg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService: memberService,
		memberHandler: memberHandler,
		sleepHandler:  sleepHandler,
		streakHandler: streakHandler,
		adminHandler:  adminHandler,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start runs long polling until ctx is cancelled. It returns once every
// in-flight update has been handled.
func (b *Bot) Start(ctx context.Context) error {
	defer b.rateLimiter.Close()

	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Bot started, waiting for messages")

	for update := range updates {
		b.inflight <- struct{}{}
		go func(upd telego.Update) {
			defer func() { <-b.inflight }()
			b.handleUpdate(ctx, upd)
		}(update)
	}

	// drain: take every slot so running handlers finish first
	for i := 0; i < cap(b.inflight); i++ {
		b.inflight <- struct{}{}
	}
	log.Info("Bot stopped")
	return nil
}

// handleUpdate handles one update.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(update)

	message := update.Message
	if message == nil || message.Text == "" {
		return
	}

	// A plain message during the /login dialog is the password itself.
	awaitingPassword := message.From != nil && b.adminHandler.AwaitingPassword(message.From.ID)
	middleware.LogMessage(message, awaitingPassword)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("Rate limited")
		return
	}

	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.Username, message.From.FirstName, message.From.LastName,
	); err != nil {
		// Sessions reference members, so nothing else would work.
		log.WithError(err).WithField("user_id", userID).Error("EnsureMember failed")
		common.Reply(ctx, b.sender, chatID, "❌ Something went wrong, try again later")
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		if b.adminHandler.HandleText(ctx, chatID, userID, message.MessageID, message.Text) {
			return
		}
		common.Reply(ctx, b.sender, chatID, "Send /help to see what I can do")
		return
	}

	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args":    len(args),
		"user_id": userID,
	}).Debug("Routing command")
	b.routeCommand(ctx, message, cmd, args)
}

// routeCommand sends the command to its handler.
func (b *Bot) routeCommand(ctx context.Context, message *telego.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	switch cmd {
	case "start", "help":
		common.Reply(ctx, b.sender, chatID, helpText)

	case "sleep":
		b.sleepHandler.HandleSleep(ctx, chatID, userID)

	case "wake":
		b.sleepHandler.HandleWake(ctx, chatID, userID, args)

	case "history":
		b.sleepHandler.HandleHistory(ctx, chatID, userID)

	case "streak":
		b.streakHandler.HandleStreak(ctx, chatID, userID)

	case "tz":
		b.memberHandler.HandleTimezone(ctx, chatID, userID, args)

	case "me":
		b.memberHandler.HandleMe(ctx, chatID, userID)

	case "login":
		b.adminHandler.HandleLogin(ctx, chatID, userID, message.MessageID, args)

	case "logout":
		b.adminHandler.HandleLogout(ctx, chatID, userID)

	case "overview":
		b.adminHandler.HandleOverview(ctx, chatID, userID)

	default:
		common.Reply(ctx, b.sender, chatID, "Unknown command. Send /help")
	}
}

// SendMessageToUser sends a message outside of an update (reminders).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := b.sender.SendMessage(ctx, tu.Message(tu.ID(userID), text)); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to send message")
		return
	}
	log.WithField("user_id", userID).Debug("Message sent")
}
