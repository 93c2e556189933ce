// Package common holds small utilities shared across the project:
// timezone loading, date helpers, text shortening.
package common

import (
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// LoadLocation loads an IANA zone and falls back to UTC when the zone
// database does not know it (minimal containers often ship without tzdata).
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("tz", name).Warn("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

// FormatDateTime renders a timestamp as "Mon 02 Jan 15:04" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Mon 02 Jan 15:04")
}

// Shorten cuts text to max runes and appends "..." when something was cut.
func Shorten(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
