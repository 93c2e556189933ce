// Package sessions records sleep sessions and wake-ups with dream notes.
// models.go describes the session data the rest of the bot reads.
package sessions

import (
	"time"

	"github.com/google/uuid"
)

// SleepSession is one night (or nap) of a user.
// A session without wake-ups is still open.
type SleepSession struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"` // When the user went to bed
	WakeUps   []WakeEvent `db:"-" json:"wake_ups"`            // Ordered by creation
}

// WakeEvent is one wake-up within a session, optionally with a dream note.
type WakeEvent struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	SessionID uuid.UUID  `db:"session_id" json:"session_id"`
	AwakenAt  *time.Time `db:"awaken_at" json:"awaken_at,omitempty"`
	Dream     string     `db:"dream" json:"dream,omitempty"`
	Quality   int        `db:"quality" json:"quality,omitempty"` // 1..5, 0 = not rated
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Completed reports whether the session has at least one wake-up.
func (s *SleepSession) Completed() bool {
	return len(s.WakeUps) > 0
}

// LastWake returns the latest wake-up or nil.
func (s *SleepSession) LastWake() *WakeEvent {
	if len(s.WakeUps) == 0 {
		return nil
	}
	return &s.WakeUps[len(s.WakeUps)-1]
}

// Duration is the time from going to bed to the last recorded awakening.
// Zero when the session is open or the wake-up has no timestamp.
func (s *SleepSession) Duration() time.Duration {
	w := s.LastWake()
	if w == nil || w.AwakenAt == nil || w.AwakenAt.Before(s.CreatedAt) {
		return 0
	}
	return w.AwakenAt.Sub(s.CreatedAt)
}

// WakeRequest is what /wake sends to the service.
type WakeRequest struct {
	Quality int    `validate:"omitempty,min=1,max=5"`
	Dream   string `validate:"max=2000"`
}
