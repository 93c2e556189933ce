// pluralize.go renders counts with the right English noun form.

package common

import "fmt"

// Pluralize returns singular when n == 1 and plural otherwise (0 is plural).
//
//	Pluralize(1, "day", "days") → "day"
//	Pluralize(0, "day", "days") → "days"
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// FormatDays renders "1 day" / "5 days".
func FormatDays(n int) string {
	return fmt.Sprintf("%d %s", n, Pluralize(n, "day", "days"))
}

// FormatSessions renders "1 session" / "0 sessions".
func FormatSessions(n int) string {
	return fmt.Sprintf("%d %s", n, Pluralize(n, "session", "sessions"))
}
