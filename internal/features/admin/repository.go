// repository.go works with the admin_sessions and admin_login_attempts tables.

package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dreamweaver.app/sleep-bot/internal/common"
)

// Repository stores admin sessions and login attempts.
type Repository interface {
	CreateSession(ctx context.Context, session *AdminSession) error
	// GetActiveSession returns common.ErrNotFound when nothing is active at now.
	GetActiveSession(ctx context.Context, userID int64, now time.Time) (*AdminSession, error)
	DeactivateSessions(ctx context.Context, userID int64) error
	LogAttempt(ctx context.Context, userID int64, at time.Time, success bool) error
	// CountFailedSince counts failed attempts at or after since.
	CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// PostgresRepository is the PostgreSQL admin repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates the repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) CreateSession(ctx context.Context, session *AdminSession) error {
	query := `
		INSERT INTO admin_sessions (user_id, session_token, authenticated_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`
	_, err := r.db.Exec(ctx, query, session.UserID, session.SessionToken, session.AuthenticatedAt.UTC(), session.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("create admin session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetActiveSession(ctx context.Context, userID int64, now time.Time) (*AdminSession, error) {
	query := `
		SELECT id, user_id, session_token, authenticated_at, expires_at, is_active
		FROM admin_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY authenticated_at DESC
		LIMIT 1
	`
	var s AdminSession
	err := r.db.QueryRow(ctx, query, userID, now.UTC()).Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt, &s.ExpiresAt, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("read admin session: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) DeactivateSessions(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE admin_sessions SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deactivate admin sessions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LogAttempt(ctx context.Context, userID int64, at time.Time, success bool) error {
	query := `INSERT INTO admin_login_attempts (user_id, attempt_time, success) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, userID, at.UTC(), success); err != nil {
		return fmt.Errorf("log login attempt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time >= $2
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count login attempts: %w", err)
	}
	return count, nil
}
