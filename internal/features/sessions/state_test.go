package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatestIgnoresOrder(t *testing.T) {
	base := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)
	list := []SleepSession{
		{CreatedAt: base.Add(-48 * time.Hour)},
		{CreatedAt: base},
		{CreatedAt: base.Add(-24 * time.Hour)},
	}
	assert.Equal(t, base, Latest(list).CreatedAt)
	assert.Nil(t, Latest(nil))
}

func TestActiveSession(t *testing.T) {
	bed := time.Date(2026, 5, 10, 23, 0, 0, 0, time.UTC)
	open := SleepSession{CreatedAt: bed}
	done := SleepSession{CreatedAt: bed, WakeUps: []WakeEvent{{Quality: 3}}}
	window := 16 * time.Hour

	tests := []struct {
		name       string
		list       []SleepSession
		now        time.Time
		wantActive bool
		wantRecent bool
	}{
		{"no sessions", nil, bed, false, false},
		{"open and recent", []SleepSession{open}, bed.Add(7 * time.Hour), true, true},
		{"completed and recent", []SleepSession{done}, bed.Add(7 * time.Hour), false, true},
		{"open but stale", []SleepSession{open}, bed.Add(17 * time.Hour), false, false},
		{"exactly at window edge", []SleepSession{open}, bed.Add(window), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantActive, ActiveSession(tt.list, tt.now, window) != nil)
			assert.Equal(t, tt.wantRecent, RecentSession(tt.list, tt.now, window) != nil)
		})
	}
}

func TestSessionDuration(t *testing.T) {
	bed := time.Date(2026, 5, 10, 23, 0, 0, 0, time.UTC)
	up := bed.Add(7*time.Hour + 30*time.Minute)

	s := SleepSession{CreatedAt: bed}
	assert.False(t, s.Completed())
	assert.Zero(t, s.Duration())

	s.WakeUps = []WakeEvent{{AwakenAt: &up}}
	assert.True(t, s.Completed())
	assert.Equal(t, 7*time.Hour+30*time.Minute, s.Duration())

	s.WakeUps = []WakeEvent{{}}
	assert.Zero(t, s.Duration())
}
