// recovery.go keeps a panicking handler from taking the bot down.

package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// RecoverFromPanic is deferred at the top of every update goroutine.
// The update identifies which message crashed the handler.
func RecoverFromPanic(update telego.Update) {
	r := recover()
	if r == nil {
		return
	}

	fields := log.Fields{
		"component": "panic_recovery",
		"update_id": update.UpdateID,
		"panic":     fmt.Sprintf("%v", r),
		"stack":     string(debug.Stack()),
	}
	if msg := update.Message; msg != nil {
		fields["chat_id"] = msg.Chat.ID
		if msg.From != nil {
			fields["user_id"] = msg.From.ID
		}
		fields["text"] = common.Shorten(MaskSecrets(msg.Text), 50)
	}
	log.WithFields(fields).Error("Panic in handler recovered")
}
