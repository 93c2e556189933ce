// service.go loads sessions, computes streaks for users
// and sends bedtime reminders to users who are about to lose a streak.

package streak

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/features/sessions"
)

// SessionSource provides session history.
type SessionSource interface {
	List(ctx context.Context, userID int64) ([]sessions.SleepSession, error)
	UserIDs(ctx context.Context) ([]int64, error)
}

// Locator resolves a member's timezone.
type Locator interface {
	Location(ctx context.Context, userID int64) *time.Location
}

// Entry is one user's stats, for reminders and the admin overview.
type Entry struct {
	UserID  int64
	Stats   Stats
	LastDay int64 // Day number of the most recent sleep-day, 0 when there is none
	Today   int64 // Day number of "today" in the user's timezone
}

// Service computes streaks on demand.
type Service struct {
	sessions SessionSource
	locator  Locator
	cfg      *config.Config
	clock    func() time.Time

	mu       sync.Mutex
	reminded map[int64]int64 // user_id → day number a reminder went out for
}

// NewService creates the streak service.
func NewService(sessions SessionSource, locator Locator, cfg *config.Config) *Service {
	return &Service{
		sessions: sessions,
		locator:  locator,
		cfg:      cfg,
		clock:    time.Now,
		reminded: make(map[int64]int64),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// StatsFor computes the user's streaks in the user's timezone.
func (s *Service) StatsFor(ctx context.Context, userID int64) (Stats, error) {
	e, err := s.entry(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return e.Stats, nil
}

func (s *Service) entry(ctx context.Context, userID int64) (Entry, error) {
	list, err := s.sessions.List(ctx, userID)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load sessions (user_id=%d): %w", userID, err)
	}
	now := s.clock().In(s.locator.Location(ctx, userID))

	stats, days := compute(list, now)
	e := Entry{
		UserID: userID,
		Stats:  stats,
		Today:  DayNumber(now),
	}
	if len(days) > 0 {
		e.LastDay = days[0]
	}
	return e, nil
}

// entries computes stats for every user that has sessions.
func (s *Service) entries(ctx context.Context) ([]Entry, error) {
	ids, err := s.sessions.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.entry(ctx, id)
		if err != nil {
			log.WithError(err).WithField("user_id", id).Warn("Skipping user in streak scan")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Leaderboard returns the users with the longest current streaks.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	var active []Entry
	for _, e := range all {
		if e.Stats.CurrentStreak > 0 {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Stats.CurrentStreak != active[j].Stats.CurrentStreak {
			return active[i].Stats.CurrentStreak > active[j].Stats.CurrentStreak
		}
		return active[i].Stats.LongestStreak > active[j].Stats.LongestStreak
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

// AtRisk returns users with a streak of at least STREAK_REMINDER_THRESHOLD whose
// last sleep-day is yesterday: without a session tonight the streak breaks.
func (s *Service) AtRisk(ctx context.Context) ([]Entry, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, e := range all {
		if e.Stats.CurrentStreak >= s.cfg.StreakReminderThreshold && e.LastDay == e.Today-1 {
			out = append(out, e)
		}
	}
	return out, nil
}

// SendReminders notifies at-risk users, at most once per user per day.
// Runs from cron.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) error {
	atRisk, err := s.AtRisk(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, e := range atRisk {
		if !s.markReminded(e.UserID, e.Today) {
			continue
		}
		msg := fmt.Sprintf("⚠️ Your sleep streak is %s! Log tonight with /sleep and /wake so you don't lose it.",
			common.FormatDays(e.Stats.CurrentStreak))
		sendFunc(e.UserID, msg)
		sent++
	}

	log.WithFields(log.Fields{
		"at_risk": len(atRisk),
		"sent":    sent,
	}).Info("Streak reminders processed")
	return nil
}

// markReminded records the reminder and reports false if one already went out today.
func (s *Service) markReminded(userID, day int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reminded[userID] == day {
		return false
	}
	s.reminded[userID] = day
	return true
}
