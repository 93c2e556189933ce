// service.go contains the sleep logging logic:
// going to bed, waking up, history and bulk import.

package sessions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
)

var validate = validator.New()

// Service manages sleep sessions.
type Service struct {
	repo   Repository
	window time.Duration    // How long a session stays "recent"
	clock  func() time.Time // Injected for tests
}

// NewService creates the session service.
func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:   repo,
		window: cfg.SessionActiveWindow,
		clock:  time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// StartSleep opens a new session stamped now.
// Fails with common.ErrAlreadySleeping while an open session is within the window.
func (s *Service) StartSleep(ctx context.Context, userID int64) (*SleepSession, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if ActiveSession(list, now, s.window) != nil {
		return nil, common.ErrAlreadySleeping
	}

	session := &SleepSession{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	if _, err := s.repo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"session_id": session.ID,
	}).Debug("Sleep session started")
	return session, nil
}

// Wake records a wake-up in the recent session.
// Several wake-ups per night are allowed; the first one completes the session.
func (s *Service) Wake(ctx context.Context, userID int64, req WakeRequest) (*SleepSession, *WakeEvent, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("invalid wake-up: %w", err)
	}

	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock()
	session := RecentSession(list, now, s.window)
	if session == nil {
		return nil, nil, common.ErrNoSession
	}

	wake := WakeEvent{
		ID:        uuid.New(),
		SessionID: session.ID,
		AwakenAt:  &now,
		Dream:     req.Dream,
		Quality:   req.Quality,
		CreatedAt: now,
	}
	if err := s.repo.AddWakeEvent(ctx, &wake); err != nil {
		return nil, nil, fmt.Errorf("failed to record wake-up: %w", err)
	}
	session.WakeUps = append(session.WakeUps, wake)

	log.WithFields(log.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"wake_ups":   len(session.WakeUps),
	}).Debug("Wake-up recorded")
	return session, &wake, nil
}

// List returns the user's sessions, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]SleepSession, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Import stores sessions decoded from an export for userID.
// Sessions whose ID already exists are skipped; the count of new ones is returned.
func (s *Service) Import(ctx context.Context, userID int64, list []SleepSession) (int, error) {
	imported := 0
	for i := range list {
		session := list[i]
		session.UserID = userID
		if session.ID == uuid.Nil {
			session.ID = uuid.New()
		}
		inserted, err := s.repo.InsertSession(ctx, &session)
		if err != nil {
			return imported, fmt.Errorf("import session %s: %w", session.ID, err)
		}
		if inserted {
			imported++
		}
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"total":    len(list),
		"imported": imported,
	}).Info("Sessions imported")
	return imported, nil
}

// UserIDs returns all users that have logged at least one session.
func (s *Service) UserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDs(ctx)
}

// CountCompleted returns the number of completed sessions across all users.
func (s *Service) CountCompleted(ctx context.Context) (int, error) {
	return s.repo.CountCompleted(ctx)
}
