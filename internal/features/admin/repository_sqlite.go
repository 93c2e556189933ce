// repository_sqlite.go is the SQLite implementation.

package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dreamweaver.app/sleep-bot/internal/common"
)

// SQLiteRepository is the SQLite admin repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates the repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) CreateSession(ctx context.Context, session *AdminSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (user_id, session_token, authenticated_at, expires_at, is_active) VALUES (?, ?, ?, ?, 1)`,
		session.UserID, session.SessionToken, session.AuthenticatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create admin session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetActiveSession(ctx context.Context, userID int64, now time.Time) (*AdminSession, error) {
	var s AdminSession
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_token, authenticated_at, expires_at, is_active
		FROM admin_sessions
		WHERE user_id = ? AND is_active = 1 AND expires_at > ?
		ORDER BY authenticated_at DESC
		LIMIT 1
	`, userID, now.UTC()).Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt, &s.ExpiresAt, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("read admin session: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) DeactivateSessions(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_sessions SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deactivate admin sessions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LogAttempt(ctx context.Context, userID int64, at time.Time, success bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_login_attempts (user_id, attempt_time, success) VALUES (?, ?, ?)`,
		userID, at.UTC(), success,
	)
	if err != nil {
		return fmt.Errorf("log login attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admin_login_attempts WHERE user_id = ? AND success = 0 AND attempt_time >= ?`,
		userID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count login attempts: %w", err)
	}
	return count, nil
}
