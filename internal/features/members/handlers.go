// handlers.go serves /tz and /me.

package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// Handler handles member commands.
type Handler struct {
	service *Service
	bot     common.MessageSender
	clock   func() time.Time
}

// NewHandler creates the member command handler.
func NewHandler(service *Service, bot common.MessageSender) *Handler {
	return &Handler{service: service, bot: bot, clock: time.Now}
}

// HandleTimezone handles /tz [IANA zone].
// Without an argument it shows the current zone.
func (h *Handler) HandleTimezone(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		loc := h.service.Location(ctx, userID)
		common.Reply(ctx, h.bot, chatID, fmt.Sprintf(
			"🌍 Your timezone: %s (local time %s)\nChange it with /tz Europe/Berlin",
			loc, h.clock().In(loc).Format("15:04"),
		))
		return
	}

	loc, err := h.service.SetTimezone(ctx, userID, strings.TrimSpace(args[0]))
	if err != nil {
		if errors.Is(err, common.ErrInvalidTimezone) {
			common.Reply(ctx, h.bot, chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to set timezone")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
		return
	}
	common.Reply(ctx, h.bot, chatID, fmt.Sprintf(
		"✅ Timezone set to %s. Your local time is %s.",
		loc, h.clock().In(loc).Format("15:04"),
	))
}

// HandleMe handles /me: what the bot knows about the user.
func (h *Handler) HandleMe(ctx context.Context, chatID, userID int64) {
	m, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load member")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
		return
	}

	tz := m.Timezone
	if tz == "" {
		tz = h.service.DefaultLocation().String() + " (default)"
	}
	common.Reply(ctx, h.bot, chatID, fmt.Sprintf(
		"👤 %s\nTimezone: %s\nWith us since %s",
		m.DisplayName(), tz, humanize.RelTime(m.CreatedAt, h.clock(), "ago", "from now"),
	))
}
