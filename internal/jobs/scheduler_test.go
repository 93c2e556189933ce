package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamweaver.app/sleep-bot/internal/config"
)

type nopReminder struct{}

func (nopReminder) SendReminders(context.Context, func(int64, string)) error { return nil }

func TestSchedulerStart(t *testing.T) {
	send := func(int64, string) {}

	cfg := &config.Config{AppTimezone: "UTC", StreakReminderCron: "0 21 * * *", FeatureRemindersEnabled: true}
	s := NewScheduler(cfg, nopReminder{}, send)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, s.Entries())
	s.Stop()

	cfg = &config.Config{AppTimezone: "UTC", StreakReminderCron: "every evening", FeatureRemindersEnabled: true}
	assert.Error(t, NewScheduler(cfg, nopReminder{}, send).Start(context.Background()))

	cfg = &config.Config{AppTimezone: "UTC", StreakReminderCron: "0 21 * * *"}
	s = NewScheduler(cfg, nopReminder{}, send)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 0, s.Entries())
	s.Stop()
}
