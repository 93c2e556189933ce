// telegram.go wraps message sending so handlers can be
// exercised without a live bot.

package common

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

// MessageSender is the part of *telego.Bot the handlers use.
type MessageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// Reply sends a plain text message and logs failures.
func Reply(ctx context.Context, bot MessageSender, chatID int64, text string) {
	if _, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
