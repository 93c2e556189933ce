// repository_sqlite.go is the embedded-database implementation
// used with STORAGE_BACKEND=sqlite.

package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteRepository keeps sessions in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates the SQLite session repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) InsertSession(ctx context.Context, s *SleepSession) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sleep_sessions (id, user_id, created_at) VALUES (?, ?, ?)`,
		s.ID.String(), s.UserID, s.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	for _, w := range s.WakeUps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wake_events (id, session_id, awaken_at, dream, quality, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID.String(), s.ID.String(), nullTime(w.AwakenAt), w.Dream, w.Quality, w.CreatedAt.UTC(),
		); err != nil {
			return false, fmt.Errorf("insert wake event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit session: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) AddWakeEvent(ctx context.Context, w *WakeEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wake_events (id, session_id, awaken_at, dream, quality, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.SessionID.String(), nullTime(w.AwakenAt), w.Dream, w.Quality, w.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert wake event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]SleepSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, created_at FROM sleep_sessions WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
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

	wakeRows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.session_id, w.awaken_at, w.dream, w.quality, w.created_at
		FROM wake_events w
		JOIN sleep_sessions s ON s.id = w.session_id
		WHERE s.user_id = ?
		ORDER BY w.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query wake events (user_id=%d): %w", userID, err)
	}
	defer wakeRows.Close()

	var wakes []WakeEvent
	for wakeRows.Next() {
		var w WakeEvent
		var awakenAt sql.NullTime
		if err := wakeRows.Scan(&w.ID, &w.SessionID, &awakenAt, &w.Dream, &w.Quality, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wake event: %w", err)
		}
		if awakenAt.Valid {
			w.AwakenAt = &awakenAt.Time
		}
		wakes = append(wakes, w)
	}
	if err := wakeRows.Err(); err != nil {
		return nil, fmt.Errorf("read wake events: %w", err)
	}

	return attachWakeUps(out, wakes), nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM sleep_sessions ORDER BY user_id`)
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

func (r *SQLiteRepository) CountCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sleep_sessions s
		WHERE EXISTS (SELECT 1 FROM wake_events w WHERE w.session_id = s.id)
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
