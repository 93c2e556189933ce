// Package middleware contains the update pipeline helpers: message logging,
// panic recovery and per-user rate limiting.
package middleware

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// LogMessage logs an incoming message at debug level.
// Passwords after /login are masked. secret hides the whole text, it is set
// while the sender is in the password dialog.
func LogMessage(message *telego.Message, secret bool) {
	if message == nil || message.From == nil {
		return
	}

	text := MaskSecrets(message.Text)
	if secret {
		text = "***"
	}
	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.Username,
		"text":     common.Shorten(text, 50),
	}).Debug("Incoming message")
}

// MaskSecrets hides the argument of a login command.
func MaskSecrets(text string) string {
	for _, prefix := range []string{"/login ", "!login ", ".login "} {
		if len(text) > len(prefix) && text[:len(prefix)] == prefix {
			return prefix + "***"
		}
	}
	return text
}
