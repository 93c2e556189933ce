// errors.go defines the user-facing errors shared by all features.
// Handlers match them with errors.Is and turn them into chat replies.

package common

import "errors"

// Storage
var (
	// ErrNotFound: the row does not exist (pgx.ErrNoRows / sql.ErrNoRows are normalized to this)
	ErrNotFound = errors.New("not found")
)

// Sleep sessions
var (
	// ErrAlreadySleeping: /sleep while an open session is still running
	ErrAlreadySleeping = errors.New("you are already asleep, use /wake first")
	// ErrNoSession: /wake without a recent session to attach to
	ErrNoSession = errors.New("no recent sleep session, use /sleep first")
	// ErrNoSessionArray: an import document has no recognizable session list
	ErrNoSessionArray = errors.New("no session array found in document")
)

// Members
var (
	// ErrInvalidTimezone: /tz with a name time.LoadLocation does not know
	ErrInvalidTimezone = errors.New("unknown timezone, use an IANA name like Europe/Berlin")
)

// Admin
var (
	// ErrNotAdmin: the user is not listed in ADMIN_IDS or has no active session
	ErrNotAdmin = errors.New("you are not an administrator")
	// ErrWrongPassword: password does not match ADMIN_PASSWORD_HASH
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts: brute-force lockout
	ErrTooManyAttempts = errors.New("too many attempts, wait an hour")
)
