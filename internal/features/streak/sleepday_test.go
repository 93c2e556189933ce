package streak

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepDayCutover(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	may10 := time.Date(2026, 5, 10, 0, 0, 0, 0, loc)
	may11 := time.Date(2026, 5, 11, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"late evening", time.Date(2026, 5, 10, 23, 30, 0, 0, loc), may10},
		{"after midnight", time.Date(2026, 5, 11, 2, 30, 0, 0, loc), may10},
		{"just before cutover", time.Date(2026, 5, 11, 3, 59, 59, 0, loc), may10},
		{"exactly at cutover", time.Date(2026, 5, 11, 4, 0, 0, 0, loc), may11},
		{"after cutover", time.Date(2026, 5, 11, 4, 30, 0, 0, loc), may11},
		{"month boundary", time.Date(2026, 6, 1, 1, 0, 0, 0, loc), time.Date(2026, 5, 31, 0, 0, 0, 0, loc)},
		{"year boundary", time.Date(2027, 1, 1, 3, 0, 0, 0, loc), time.Date(2026, 12, 31, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(SleepDay(tt.at)), "got %s", SleepDay(tt.at))
		})
	}
}

func TestSleepDayUsesTimestampLocation(t *testing.T) {
	// 01:00 UTC is 04:00 in UTC+3: previous day in UTC, own day in UTC+3.
	at := time.Date(2026, 5, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, SleepDay(at).Day())
	assert.Equal(t, 11, SleepDay(at.In(time.FixedZone("UTC+3", 3*60*60))).Day())
}

func TestDayNumberAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks moved forward on 2026-03-29: that day has 23 hours.
	before := SleepDay(time.Date(2026, 3, 28, 23, 0, 0, 0, berlin))
	after := SleepDay(time.Date(2026, 3, 29, 23, 0, 0, 0, berlin))
	assert.Equal(t, int64(1), DayNumber(after)-DayNumber(before))

	assert.Equal(t, int64(0), DayNumber(time.Date(1970, 1, 1, 23, 0, 0, 0, time.UTC)))
}
