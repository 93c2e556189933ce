// handlers.go serves /login, /logout and /overview.
// Admin commands only work in a private chat, the router enforces that.

package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// Bot is the part of *telego.Bot the admin handler uses.
// Messages carrying a password are deleted from the chat.
type Bot interface {
	common.MessageSender
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
}

// Handler handles admin commands.
type Handler struct {
	service *Service
	bot     Bot
}

// NewHandler creates the admin handler.
func NewHandler(service *Service, bot Bot) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleLogin handles /login [password]. Without a password the next
// message is taken as one.
func (h *Handler) HandleLogin(ctx context.Context, chatID, userID int64, messageID int, args []string) {
	if !h.service.IsAdmin(userID) {
		common.Reply(ctx, h.bot, chatID, "❌ "+common.ErrNotAdmin.Error())
		return
	}
	if len(args) == 0 {
		h.service.SetState(userID, StateAwaitingPassword)
		common.Reply(ctx, h.bot, chatID, "🔐 Send the admin password:")
		return
	}
	h.login(ctx, chatID, userID, messageID, strings.Join(args, " "))
}

// AwaitingPassword reports whether the user's next plain message is a password.
func (h *Handler) AwaitingPassword(userID int64) bool {
	state := h.service.GetState(userID)
	return state != nil && state.State == StateAwaitingPassword
}

// HandleText consumes a plain message when the admin dialog expects one.
// It reports whether the message was taken.
func (h *Handler) HandleText(ctx context.Context, chatID, userID int64, messageID int, text string) bool {
	if !h.AwaitingPassword(userID) {
		return false
	}
	h.service.ClearState(userID)
	h.login(ctx, chatID, userID, messageID, strings.TrimSpace(text))
	return true
}

func (h *Handler) login(ctx context.Context, chatID, userID int64, messageID int, password string) {
	h.deleteMessage(ctx, chatID, messageID)

	err := h.service.Login(ctx, userID, password)
	switch {
	case err == nil:
		common.Reply(ctx, h.bot, chatID, "✅ Logged in for 24 hours. Try /overview")
	case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrTooManyAttempts), errors.Is(err, common.ErrNotAdmin):
		common.Reply(ctx, h.bot, chatID, "❌ "+err.Error())
	default:
		log.WithError(err).WithField("user_id", userID).Error("Admin login failed")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
	}
}

// HandleLogout handles /logout.
func (h *Handler) HandleLogout(ctx context.Context, chatID, userID int64) {
	if !h.service.IsAdmin(userID) {
		common.Reply(ctx, h.bot, chatID, "❌ "+common.ErrNotAdmin.Error())
		return
	}
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Admin logout failed")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
		return
	}
	common.Reply(ctx, h.bot, chatID, "👋 Logged out")
}

// HandleOverview handles /overview.
func (h *Handler) HandleOverview(ctx context.Context, chatID, userID int64) {
	o, err := h.service.Overview(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotAdmin) {
			common.Reply(ctx, h.bot, chatID, "🔐 Log in first with /login")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to build overview")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
		return
	}
	common.Reply(ctx, h.bot, chatID, FormatOverview(o))
}

// FormatOverview renders the report.
func FormatOverview(o *Overview) string {
	var b strings.Builder
	b.WriteString("📊 Overview\n\n")
	fmt.Fprintf(&b, "Members: %s\n", humanize.Comma(int64(o.Members)))
	fmt.Fprintf(&b, "Completed sessions: %s\n", humanize.Comma(int64(o.CompletedSessions)))

	if len(o.Top) == 0 {
		b.WriteString("\nNobody is on a streak yet.")
		return b.String()
	}
	b.WriteString("\n🔥 Current streaks\n")
	for i, t := range o.Top {
		fmt.Fprintf(&b, "%s %s: %s (best %s)\n",
			humanize.Ordinal(i+1), t.Name, common.FormatDays(t.CurrentStreak), common.FormatDays(t.LongestStreak))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := h.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	}); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Failed to delete password message")
	}
}
