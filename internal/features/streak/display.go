// display.go renders Stats as text.

package streak

import "dreamweaver.app/sleep-bot/internal/common"

// Format turns Stats into UI strings.
func Format(s Stats) Display {
	current := "No current streak"
	if s.CurrentStreak > 0 {
		current = common.FormatDays(s.CurrentStreak)
	}
	longest := "No streaks yet"
	if s.LongestStreak > 0 {
		longest = common.FormatDays(s.LongestStreak)
	}
	return Display{
		CurrentStreakText: current,
		LongestStreakText: longest,
		TotalSessionsText: common.FormatSessions(s.TotalSessions),
		Motivation:        MotivationFor(s).Message(),
	}
}

// MotivationFor picks the message tier; the first matching rule wins.
func MotivationFor(s Stats) Tier {
	switch {
	case s.CurrentStreak == 0:
		return TierStartNew
	case s.CurrentStreak == 1:
		return TierGreatStart
	case s.CurrentStreak >= s.LongestStreak && s.CurrentStreak >= 7:
		return TierPersonalRecord
	case s.CurrentStreak >= 7:
		return TierAmazing
	case s.CurrentStreak >= 3:
		return TierMomentum
	default:
		return TierKeepGoing
	}
}
