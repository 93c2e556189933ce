// repository.go holds the storage contract and the PostgreSQL implementation.

package sessions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores sessions and their wake-ups.
type Repository interface {
	// InsertSession stores a session with its wake-ups. It reports false when the ID already exists.
	InsertSession(ctx context.Context, s *SleepSession) (bool, error)
	AddWakeEvent(ctx context.Context, w *WakeEvent) error
	// ListByUser returns the user's sessions, newest first, wake-ups attached.
	ListByUser(ctx context.Context, userID int64) ([]SleepSession, error)
	// ListUserIDs returns every user with at least one session.
	ListUserIDs(ctx context.Context) ([]int64, error)
	CountCompleted(ctx context.Context) (int, error)
}

// PostgresRepository works with the sleep_sessions and wake_events tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL session repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) InsertSession(ctx context.Context, s *SleepSession) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO sleep_sessions (id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.UserID, s.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, w := range s.WakeUps {
		if _, err := tx.Exec(ctx, `
			INSERT INTO wake_events (id, session_id, awaken_at, dream, quality, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, w.ID, s.ID, utcPtr(w.AwakenAt), w.Dream, w.Quality, w.CreatedAt.UTC()); err != nil {
			return false, fmt.Errorf("insert wake event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit session: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) AddWakeEvent(ctx context.Context, w *WakeEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wake_events (id, session_id, awaken_at, dream, quality, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, w.ID, w.SessionID, utcPtr(w.AwakenAt), w.Dream, w.Quality, w.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert wake event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]SleepSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, created_at
		FROM sleep_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions (user_id=%d): %w", userID, err)
	}
	defer rows.Close()

	var out []SleepSession
	for rows.Next() {
		var s SleepSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	wakeRows, err := r.db.Query(ctx, `
		SELECT w.id, w.session_id, w.awaken_at, w.dream, w.quality, w.created_at
		FROM wake_events w
		JOIN sleep_sessions s ON s.id = w.session_id
		WHERE s.user_id = $1
		ORDER BY w.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wake events (user_id=%d): %w", userID, err)
	}
	defer wakeRows.Close()

	var wakes []WakeEvent
	for wakeRows.Next() {
		var w WakeEvent
		if err := wakeRows.Scan(&w.ID, &w.SessionID, &w.AwakenAt, &w.Dream, &w.Quality, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wake event: %w", err)
		}
		wakes = append(wakes, w)
	}
	if err := wakeRows.Err(); err != nil {
		return nil, fmt.Errorf("read wake events: %w", err)
	}

	return attachWakeUps(out, wakes), nil
}

func (r *PostgresRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM sleep_sessions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query session owners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session owner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) CountCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM sleep_sessions s
		WHERE EXISTS (SELECT 1 FROM wake_events w WHERE w.session_id = s.id)
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return n, nil
}

// attachWakeUps distributes wake events (already in creation order) onto their sessions.
func attachWakeUps(list []SleepSession, wakes []WakeEvent) []SleepSession {
	index := make(map[uuid.UUID]int, len(list))
	for i := range list {
		index[list[i].ID] = i
	}
	for _, w := range wakes {
		if i, ok := index[w.SessionID]; ok {
			list[i].WakeUps = append(list[i].WakeUps, w)
		}
	}
	return list
}
