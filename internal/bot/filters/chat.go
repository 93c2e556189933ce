// Package filters decides which updates reach the command router.
package filters

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// ChatFilter lets through private chats with a real user.
// Sleep logs are personal, so groups only get a pointer to the private chat.
type ChatFilter struct {
	bot         common.MessageSender
	botUsername string
}

// NewChatFilter creates the filter. botUsername is used in the group hint.
func NewChatFilter(bot common.MessageSender, botUsername string) *ChatFilter {
	return &ChatFilter{bot: bot, botUsername: botUsername}
}

// CheckAccess reports whether the message should be handled.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "ChatFilter").Warn("nil message")
		return false
	}
	if message.From == nil || message.From.IsBot {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("deny: no human sender")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	if message.Chat.Type == telego.ChatTypePrivate {
		return true
	}

	// Only answer commands in groups, plain chatter is ignored silently.
	if strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		logger.Debug("deny: group command, sending hint")
		hint := "🌙 I keep sleep logs private. Talk to me directly"
		if f.botUsername != "" {
			hint += ": @" + f.botUsername
		}
		common.Reply(ctx, f.bot, message.Chat.ID, hint)
	}
	return false
}
