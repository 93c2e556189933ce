// service.go handles authentication, admin sessions
// and the overview report.

package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/features/members"
	"dreamweaver.app/sleep-bot/internal/features/streak"
)

const (
	maxFailedAttempts = 3
	attemptWindow     = time.Hour
	sessionTTL        = 24 * time.Hour
	stateTTL          = 5 * time.Minute
	overviewTopSize   = 5
)

// MemberDirectory is what the overview needs from the member service.
type MemberDirectory interface {
	Count(ctx context.Context) (int, error)
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
}

// SessionCounter counts completed sleep sessions.
type SessionCounter interface {
	CountCompleted(ctx context.Context) (int, error)
}

// Leaderboard ranks members by current streak.
type Leaderboard interface {
	Leaderboard(ctx context.Context, limit int) ([]streak.Entry, error)
}

// Service runs the admin panel.
type Service struct {
	repo     Repository
	members  MemberDirectory
	sessions SessionCounter
	streaks  Leaderboard
	cfg      *config.Config
	clock    func() time.Time

	states   map[int64]*AdminState // dialog states, in memory
	statesMu sync.RWMutex
}

// NewService creates the admin service.
func NewService(repo Repository, members MemberDirectory, sessions SessionCounter, streaks Leaderboard, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		sessions: sessions,
		streaks:  streaks,
		cfg:      cfg,
		clock:    time.Now,
		states:   make(map[int64]*AdminState),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// IsAdmin reports whether the user is listed in ADMIN_IDS.
func (s *Service) IsAdmin(userID int64) bool {
	return s.cfg.IsAdmin(userID)
}

// Login checks the password against the Argon2id hash and opens a 24h session.
// Three failures within an hour lock the user out until the hour passes.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if !s.IsAdmin(userID) {
		return common.ErrNotAdmin
	}

	now := s.clock()
	failed, err := s.repo.CountFailedSince(ctx, userID, now.Add(-attemptWindow))
	if err != nil {
		return err
	}
	if failed >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)
	if err := s.repo.LogAttempt(ctx, userID, now, match); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to log login attempt")
	}
	if !match {
		log.WithField("user_id", userID).Warn("Wrong admin password")
		return common.ErrWrongPassword
	}

	session := &AdminSession{
		UserID:          userID,
		SessionToken:    generateSecureToken(),
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("Admin logged in")
	return nil
}

// Logout ends all sessions of the user.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	s.ClearState(userID)
	return s.repo.DeactivateSessions(ctx, userID)
}

// HasActiveSession reports whether the user is an admin with a live session.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	if !s.IsAdmin(userID) {
		return false
	}
	_, err := s.repo.GetActiveSession(ctx, userID, s.clock())
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		log.WithError(err).WithField("user_id", userID).Error("Failed to read admin session")
	}
	return err == nil
}

// Overview collects the numbers for /overview.
func (s *Service) Overview(ctx context.Context, userID int64) (*Overview, error) {
	if !s.HasActiveSession(ctx, userID) {
		return nil, common.ErrNotAdmin
	}

	memberCount, err := s.members.Count(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.sessions.CountCompleted(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.streaks.Leaderboard(ctx, overviewTopSize)
	if err != nil {
		return nil, err
	}

	out := &Overview{Members: memberCount, CompletedSessions: completed}
	for _, e := range top {
		name := fmt.Sprintf("id%d", e.UserID)
		if m, err := s.members.GetByUserID(ctx, e.UserID); err == nil {
			name = m.DisplayName()
		}
		out.Top = append(out.Top, TopSleeper{
			Name:          name,
			CurrentStreak: e.Stats.CurrentStreak,
			LongestStreak: e.Stats.LongestStreak,
		})
	}
	return out, nil
}

// GetState returns the dialog state, nil when none or expired.
func (s *Service) GetState(userID int64) *AdminState {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok || s.clock().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState sets the dialog state for five minutes.
func (s *Service) SetState(userID int64, stateName string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &AdminState{
		State:     stateName,
		ExpiresAt: s.clock().Add(stateTTL),
	}
}

// ClearState drops the dialog state.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// verifyArgon2id checks a password against an encoded Argon2id hash.
// Format: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Malformed Argon2id hash")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Failed to parse Argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Failed to decode salt")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Failed to decode hash")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// constant time
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken returns a random session token.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
