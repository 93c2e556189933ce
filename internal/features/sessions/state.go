// state.go derives "is the user asleep" from the session list.
// Nothing is stored: the state is recomputed from history and the current time.

package sessions

import "time"

// Latest returns the session with the newest CreatedAt, ignoring slice order.
func Latest(list []SleepSession) *SleepSession {
	var latest *SleepSession
	for i := range list {
		if latest == nil || list[i].CreatedAt.After(latest.CreatedAt) {
			latest = &list[i]
		}
	}
	return latest
}

// RecentSession returns the latest session if it started within window before now.
// /wake attaches to this session, so several wake-ups in one night land together.
func RecentSession(list []SleepSession, now time.Time, window time.Duration) *SleepSession {
	latest := Latest(list)
	if latest == nil {
		return nil
	}
	if now.Sub(latest.CreatedAt) > window {
		return nil
	}
	return latest
}

// ActiveSession returns the session the user is currently sleeping in:
// the recent session, if it has no wake-ups yet.
func ActiveSession(list []SleepSession, now time.Time, window time.Duration) *SleepSession {
	s := RecentSession(list, now, window)
	if s == nil || s.Completed() {
		return nil
	}
	return s
}
