// Package streak derives sleep streaks from the session history.
// Nothing here is stored: streaks are recomputed from sessions every time
// they are shown, with "now" passed in explicitly.
package streak

// Stats is the derived streak summary of one user.
type Stats struct {
	CurrentStreak int `json:"current_streak"` // Consecutive sleep-days ending today or yesterday
	LongestStreak int `json:"longest_streak"` // Longest run in the whole history, >= CurrentStreak
	TotalSessions int `json:"total_sessions"` // Completed sessions, not distinct days
}

// Display is Stats rendered for the user.
type Display struct {
	CurrentStreakText string
	LongestStreakText string
	TotalSessionsText string
	Motivation        string
}

// Tier selects the motivational message.
type Tier int

const (
	TierStartNew Tier = iota
	TierGreatStart
	TierPersonalRecord
	TierAmazing
	TierMomentum
	TierKeepGoing
)

var tierMessages = map[Tier]string{
	TierStartNew:       "Log tonight's sleep to start a new streak!",
	TierGreatStart:     "Great start! Come back tomorrow to keep it going.",
	TierPersonalRecord: "New personal record! You have never been this consistent.",
	TierAmazing:        "Amazing consistency! A whole week and counting.",
	TierMomentum:       "You're building momentum, keep it up!",
	TierKeepGoing:      "Nice work, every night counts.",
}

// Message returns the user-facing wording of the tier.
func (t Tier) Message() string {
	return tierMessages[t]
}
