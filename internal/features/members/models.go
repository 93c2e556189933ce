// Package members keeps track of the people who talk to the bot:
// registration on first contact, names and the timezone used for sleep-days.
package members

import "time"

// Member is a Telegram user known to the bot.
type Member struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`  // Telegram user ID (unique)
	Username  string    `db:"username"` // may be empty
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Timezone  string    `db:"timezone"` // IANA name, empty = APP_TIMEZONE
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UpdateInfo carries the profile fields Telegram may change between messages.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns @username, or the full name when there is none.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	return name
}
