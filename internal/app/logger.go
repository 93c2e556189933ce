package app

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// telegoLogger sends telego's logs to logrus. Request URLs contain the bot
// token, so it is masked before anything is written.
type telegoLogger struct {
	replacer *strings.Replacer
	entry    *log.Entry
}

func newTelegoLogger(token string) *telegoLogger {
	replacer := strings.NewReplacer()
	if token != "" {
		replacer = strings.NewReplacer(token, "BOT_TOKEN")
	}
	return &telegoLogger{
		replacer: replacer,
		entry:    log.WithField("component", "telego"),
	}
}

func (l *telegoLogger) Debugf(format string, args ...any) {
	if !l.entry.Logger.IsLevelEnabled(log.DebugLevel) {
		return
	}
	l.entry.Debug(l.replacer.Replace(fmt.Sprintf(format, args...)))
}

func (l *telegoLogger) Errorf(format string, args ...any) {
	l.entry.Error(l.replacer.Replace(fmt.Sprintf(format, args...)))
}
