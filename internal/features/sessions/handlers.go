// handlers.go serves /sleep, /wake and /history.

package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
)

// historyLimit is how many sessions /history shows.
const historyLimit = 7

// Locator resolves a member's timezone.
type Locator interface {
	Location(ctx context.Context, userID int64) *time.Location
}

// Handler handles the sleep logging commands.
type Handler struct {
	service *Service
	locator Locator
	bot     common.MessageSender
}

// NewHandler creates the sleep command handler.
func NewHandler(service *Service, locator Locator, bot common.MessageSender) *Handler {
	return &Handler{service: service, locator: locator, bot: bot}
}

// HandleSleep handles /sleep and opens a session.
func (h *Handler) HandleSleep(ctx context.Context, chatID, userID int64) {
	session, err := h.service.StartSleep(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, err)
		return
	}

	loc := h.locator.Location(ctx, userID)
	common.Reply(ctx, h.bot, chatID, fmt.Sprintf(
		"🌙 Good night! Session started at %s.\nSend /wake when you get up, add a quality 1-5 and your dream if you remember it.",
		session.CreatedAt.In(loc).Format("15:04"),
	))
}

// HandleWake handles /wake [quality] [dream...].
//
//	/wake                     → wake-up without details
//	/wake 4                   → quality 4
//	/wake 4 flying over sea   → quality 4 and a dream note
//	/wake flying over sea     → dream note only
func (h *Handler) HandleWake(ctx context.Context, chatID, userID int64, args []string) {
	req := ParseWakeArgs(args)
	session, wake, err := h.service.Wake(ctx, userID, req)
	if err != nil {
		h.replyError(ctx, chatID, userID, err)
		return
	}

	var b strings.Builder
	b.WriteString("☀️ Good morning!")
	if len(session.WakeUps) == 1 {
		if d := session.Duration(); d > 0 {
			fmt.Fprintf(&b, " You slept %s.", FormatDuration(d))
		}
	} else {
		fmt.Fprintf(&b, " Wake-up #%d recorded.", len(session.WakeUps))
	}
	if wake.Quality > 0 {
		fmt.Fprintf(&b, "\nQuality: %s", stars(wake.Quality))
	}
	if wake.Dream != "" {
		b.WriteString("\n📝 Dream saved.")
	}
	b.WriteString("\nCheck your streak with /streak")

	common.Reply(ctx, h.bot, chatID, b.String())
}

// HandleHistory handles /history: the last sessions with their dreams.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	list, err := h.service.List(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, err)
		return
	}
	if len(list) == 0 {
		common.Reply(ctx, h.bot, chatID, "No sleep sessions yet. Send /sleep when you go to bed.")
		return
	}

	loc := h.locator.Location(ctx, userID)
	now := h.service.clock()
	if len(list) > historyLimit {
		list = list[:historyLimit]
	}

	var b strings.Builder
	b.WriteString("📖 Your recent nights\n")
	for _, s := range list {
		fmt.Fprintf(&b, "\n%s (%s)", common.FormatDateTime(s.CreatedAt, loc), humanize.RelTime(s.CreatedAt, now, "ago", "from now"))
		if !s.Completed() {
			b.WriteString(" · sleeping…")
			continue
		}
		if d := s.Duration(); d > 0 {
			fmt.Fprintf(&b, " · %s", FormatDuration(d))
		}
		for _, w := range s.WakeUps {
			if w.Quality > 0 {
				fmt.Fprintf(&b, " · %s", stars(w.Quality))
			}
			if w.Dream != "" {
				fmt.Fprintf(&b, "\n   💭 %s", common.Shorten(w.Dream, 120))
			}
		}
	}
	common.Reply(ctx, h.bot, chatID, b.String())
}

func (h *Handler) replyError(ctx context.Context, chatID, userID int64, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, common.ErrAlreadySleeping), errors.Is(err, common.ErrNoSession):
		common.Reply(ctx, h.bot, chatID, "❌ "+err.Error())
	case errors.As(err, &verrs):
		common.Reply(ctx, h.bot, chatID, "❌ Quality must be 1-5 and the dream note at most 2000 characters")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Sleep command failed")
		common.Reply(ctx, h.bot, chatID, "❌ Something went wrong, try again later")
	}
}

// ParseWakeArgs reads an optional leading quality number followed by the dream text.
func ParseWakeArgs(args []string) WakeRequest {
	var req WakeRequest
	if len(args) == 0 {
		return req
	}
	if q, err := strconv.Atoi(args[0]); err == nil {
		req.Quality = q
		args = args[1:]
	}
	req.Dream = strings.TrimSpace(strings.Join(args, " "))
	return req
}

// FormatDuration renders a sleep length as "7h 05m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// stars clamps to 0..5, imported sessions may carry other scales.
func stars(q int) string {
	q = max(0, min(q, 5))
	return strings.Repeat("★", q) + strings.Repeat("☆", 5-q)
}
