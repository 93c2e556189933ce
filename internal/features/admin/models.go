// Package admin implements the password-protected admin commands.
// models.go describes sessions, login attempts and the overview report.
package admin

import "time"

// AdminSession is an authenticated admin session.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	IsActive        bool      `db:"is_active"`
}

// LoginAttempt is one password try, kept for brute-force protection.
type LoginAttempt struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// AdminState is the dialog state of an admin. /login without a password
// waits for the next message.
type AdminState struct {
	State     string
	ExpiresAt time.Time
}

// Dialog states
const (
	StateNone             = ""
	StateAwaitingPassword = "awaiting_password"
)

// Overview is the /overview report.
type Overview struct {
	Members           int
	CompletedSessions int
	Top               []TopSleeper
}

// TopSleeper is one leaderboard row.
type TopSleeper struct {
	Name          string
	CurrentStreak int
	LongestStreak int
}
