// repository.go holds the storage contract and the PostgreSQL implementation.

package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dreamweaver.app/sleep-bot/internal/common"
)

// Repository stores members.
type Repository interface {
	// Upsert creates the member or refreshes the names. The timezone is never touched.
	Upsert(ctx context.Context, m *Member) error
	// GetByUserID returns common.ErrNotFound for unknown users.
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error
	SetTimezone(ctx context.Context, userID int64, tz string) error
	Count(ctx context.Context) (int, error)
}

// PostgresRepository works with the members table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL member repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Upsert(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName); err != nil {
		return fmt.Errorf("upsert member (user_id=%d): %w", m.UserID, err)
	}
	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, timezone, created_at, updated_at
		FROM members
		WHERE user_id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.Timezone, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member user_id=%d: %w", userID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("read member (user_id=%d): %w", userID, err)
	}
	return &m, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check member exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE members
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName); err != nil {
		return fmt.Errorf("update member info: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetTimezone(ctx context.Context, userID int64, tz string) error {
	tag, err := r.db.Exec(ctx, `UPDATE members SET timezone = $2, updated_at = NOW() WHERE user_id = $1`, userID, tz)
	if err != nil {
		return fmt.Errorf("update timezone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member user_id=%d: %w", userID, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
