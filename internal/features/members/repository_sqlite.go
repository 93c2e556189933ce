// repository_sqlite.go is the SQLite implementation.

package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dreamweaver.app/sleep-bot/internal/common"
)

// SQLiteRepository keeps members in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates the SQLite member repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) Upsert(ctx context.Context, m *Member) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (user_id, username, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET username = excluded.username,
		    first_name = excluded.first_name,
		    last_name = excluded.last_name,
		    updated_at = excluded.updated_at
	`, m.UserID, m.Username, m.FirstName, m.LastName, now, now)
	if err != nil {
		return fmt.Errorf("upsert member (user_id=%d): %w", m.UserID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	var m Member
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, first_name, last_name, timezone, created_at, updated_at
		FROM members
		WHERE user_id = ?
	`, userID).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.Timezone, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member user_id=%d: %w", userID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("read member (user_id=%d): %w", userID, err)
	}
	return &m, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE user_id = ?)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check member exists: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE members SET username = ?, first_name = ?, last_name = ?, updated_at = ? WHERE user_id = ?`,
		info.Username, info.FirstName, info.LastName, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update member info: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetTimezone(ctx context.Context, userID int64, tz string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET timezone = ?, updated_at = ? WHERE user_id = ?`,
		tz, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update timezone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member user_id=%d: %w", userID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
