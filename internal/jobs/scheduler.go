// Package jobs runs background tasks on a cron schedule.
// The only job today is the evening reminder for streaks at risk.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
)

// Reminder sends streak reminders. Implemented by streak.Service.
type Reminder interface {
	SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) error
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	reminder Reminder
	sendFunc func(userID int64, text string)
}

// NewScheduler creates a scheduler that evaluates cron specs in APP_TIMEZONE.
func NewScheduler(cfg *config.Config, reminder Reminder, sendFunc func(userID int64, text string)) *Scheduler {
	loc := common.LoadLocation(cfg.AppTimezone)
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		cfg:      cfg,
		reminder: reminder,
		sendFunc: sendFunc,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.FeatureRemindersEnabled {
		log.Info("Streak reminders disabled, scheduler idle")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.StreakReminderCron, func() {
		log.Debug("[CRON] Checking streaks at risk")
		if err := s.reminder.SendReminders(ctx, s.sendFunc); err != nil {
			log.WithError(err).Error("[CRON] Reminders failed")
		}
	})
	if err != nil {
		return fmt.Errorf("bad STREAK_REMINDER_CRON %q: %w", s.cfg.StreakReminderCron, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"spec": s.cfg.StreakReminderCron,
		"tz":   s.cfg.AppTimezone,
	}).Info("Scheduler started")
	return nil
}

// Stop stops the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
