// service.go registers members and resolves their timezones.

package members

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
)

// Service manages members.
type Service struct {
	repo     Repository
	fallback *time.Location // APP_TIMEZONE

	mu        sync.RWMutex
	locations map[string]*time.Location // loaded zones by name
}

// NewService creates the member service.
func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		fallback:  common.LoadLocation(cfg.AppTimezone),
		locations: make(map[string]*time.Location),
	}
}

// Register creates a bare member row when the user is unknown. Existing
// members are left as they are, names included.
func (s *Service) Register(ctx context.Context, userID int64) error {
	exists, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check member: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.repo.Upsert(ctx, &Member{UserID: userID}); err != nil {
		return fmt.Errorf("register member: %w", err)
	}
	log.WithField("user_id", userID).Info("Member registered without profile")
	return nil
}

// EnsureMember registers the user on first contact and refreshes the names
// when they changed in Telegram.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if existing == nil {
		member := &Member{
			UserID:    userID,
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		}
		if err := s.repo.Upsert(ctx, member); err != nil {
			return fmt.Errorf("register member: %w", err)
		}
		log.WithFields(log.Fields{
			"user_id":  userID,
			"username": username,
		}).Info("New member registered")
		return nil
	}

	if existing.Username == username && existing.FirstName == firstName && existing.LastName == lastName {
		return nil
	}
	return s.repo.UpdateInfo(ctx, userID, UpdateInfo{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
}

// GetByUserID returns the member or common.ErrNotFound.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Count returns the number of registered members.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Location returns the member's timezone, or APP_TIMEZONE when the member
// has none or cannot be read.
func (s *Service) Location(ctx context.Context, userID int64) *time.Location {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.WithError(err).WithField("user_id", userID).Warn("Failed to read member timezone")
		}
		return s.fallback
	}
	if m.Timezone == "" {
		return s.fallback
	}
	loc, err := s.load(m.Timezone)
	if err != nil {
		log.WithError(err).WithField("tz", m.Timezone).Warn("Stored timezone no longer loads")
		return s.fallback
	}
	return loc
}

// DefaultLocation is APP_TIMEZONE.
func (s *Service) DefaultLocation() *time.Location {
	return s.fallback
}

// SetTimezone validates an IANA name and stores it for the member.
func (s *Service) SetTimezone(ctx context.Context, userID int64, name string) (*time.Location, error) {
	// time.LoadLocation treats "" as UTC and "Local" as the server zone, neither is a choice.
	if name == "" || name == "Local" {
		return nil, common.ErrInvalidTimezone
	}
	loc, err := s.load(name)
	if err != nil {
		return nil, common.ErrInvalidTimezone
	}
	if err := s.repo.SetTimezone(ctx, userID, loc.String()); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"tz":      loc.String(),
	}).Info("Member timezone updated")
	return loc, nil
}

func (s *Service) load(name string) (*time.Location, error) {
	s.mu.RLock()
	loc, ok := s.locations[name]
	s.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.locations[name] = loc
	s.mu.Unlock()
	return loc, nil
}
