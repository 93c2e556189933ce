// calculator.go computes current and longest streaks.

package streak

import (
	"slices"
	"time"

	"dreamweaver.app/sleep-bot/internal/features/sessions"
)

// Compute derives Stats from a user's sessions. Input order does not matter.
// Session times are read in now's location; "today" and "yesterday" are the
// calendar days of now.
func Compute(list []sessions.SleepSession, now time.Time) Stats {
	stats, _ := compute(list, now)
	return stats
}

// compute also returns the distinct sleep-days, most recent first.
func compute(list []sessions.SleepSession, now time.Time) (Stats, []int64) {
	total := 0
	for i := range list {
		if list[i].Completed() {
			total++
		}
	}
	if total == 0 {
		return Stats{}, nil
	}

	days := DistinctDays(list, now.Location())
	return Stats{
		CurrentStreak: currentStreak(days, DayNumber(now)),
		LongestStreak: longestStreak(days),
		TotalSessions: total,
	}, days
}

// DistinctDays returns the day numbers of completed sessions' sleep-days,
// duplicates removed, most recent first.
func DistinctDays(list []sessions.SleepSession, loc *time.Location) []int64 {
	seen := make(map[int64]struct{}, len(list))
	days := make([]int64, 0, len(list))
	for i := range list {
		if !list[i].Completed() {
			continue
		}
		day := DayNumber(SleepDay(list[i].CreatedAt.In(loc)))
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	slices.Sort(days)
	slices.Reverse(days)
	return days
}

// currentStreak counts back from the most recent day, which must be today or yesterday.
func currentStreak(days []int64, today int64) int {
	if len(days) == 0 {
		return 0
	}
	mostRecent := days[0]
	if mostRecent != today && mostRecent != today-1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i] != mostRecent-int64(i) {
			break
		}
		streak++
	}
	return streak
}

// longestStreak finds the longest run of consecutive days anywhere in the history.
func longestStreak(days []int64) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 0, 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	return max(longest, run)
}
