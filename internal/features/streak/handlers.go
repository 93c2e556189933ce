// handlers.go serves /streak.

package streak

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// Handler handles streak commands.
type Handler struct {
	service *Service
	bot     common.MessageSender
}

// NewHandler creates the streak command handler.
func NewHandler(service *Service, bot common.MessageSender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleStreak handles /streak.
//
// Reply format:
//
//	🔥 Your sleep streak
//
//	Current streak: 4 days
//	Longest streak: 9 days
//	Completed sessions: 31 sessions
//
//	You're building momentum, keep it up!
func (h *Handler) HandleStreak(ctx context.Context, chatID, userID int64) {
	stats, err := h.service.StatsFor(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to compute streak")
		common.Reply(ctx, h.bot, chatID, "❌ Could not load your streak, try again later")
		return
	}

	d := Format(stats)
	common.Reply(ctx, h.bot, chatID, fmt.Sprintf(
		"🔥 Your sleep streak\n\n"+
			"Current streak: %s\n"+
			"Longest streak: %s\n"+
			"Completed sessions: %s\n\n"+
			"%s",
		d.CurrentStreakText, d.LongestStreakText, d.TotalSessionsText, d.Motivation,
	))
}
