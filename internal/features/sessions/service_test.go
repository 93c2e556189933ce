package sessions

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/db/sqlite"
)

const testUser int64 = 4242

func setupTestDB(t *testing.T, userIDs ...int64) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now().UTC()
	for _, id := range userIDs {
		_, err := db.Exec(`INSERT INTO members (user_id, first_name, created_at, updated_at) VALUES (?, 'Test', ?, ?)`, id, now, now)
		require.NoError(t, err)
	}
	return db
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupService(t *testing.T) (*Service, *fakeClock, *sql.DB) {
	db := setupTestDB(t, testUser, testUser+1)
	clock := &fakeClock{now: time.Date(2026, 5, 10, 23, 0, 0, 0, time.UTC)}
	cfg := &config.Config{SessionActiveWindow: 16 * time.Hour}
	svc := NewService(NewSQLiteRepository(db), cfg).WithClock(clock.Now)
	return svc, clock, db
}

func TestSleepWakeCycle(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := setupService(t)

	started, err := svc.StartSleep(ctx, testUser)
	require.NoError(t, err)

	_, err = svc.StartSleep(ctx, testUser)
	assert.ErrorIs(t, err, common.ErrAlreadySleeping)

	clock.Advance(7 * time.Hour)
	session, wake, err := svc.Wake(ctx, testUser, WakeRequest{Quality: 4, Dream: "a lighthouse"})
	require.NoError(t, err)
	assert.Equal(t, started.ID, session.ID)
	assert.Equal(t, 7*time.Hour, session.Duration())
	assert.Equal(t, "a lighthouse", wake.Dream)

	// Second wake-up lands in the same session.
	clock.Advance(30 * time.Minute)
	session, _, err = svc.Wake(ctx, testUser, WakeRequest{})
	require.NoError(t, err)
	assert.Len(t, session.WakeUps, 2)

	// The session is completed, so a new night can start.
	clock.Advance(15 * time.Hour)
	_, err = svc.StartSleep(ctx, testUser)
	require.NoError(t, err)

	list, err := svc.List(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Completed())
	assert.True(t, list[1].Completed())
	require.Len(t, list[1].WakeUps, 2)
	assert.Equal(t, 4, list[1].WakeUps[0].Quality)
	require.NotNil(t, list[1].WakeUps[0].AwakenAt)

	n, err := svc.CountCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStaleOpenSessionDoesNotBlockSleep(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := setupService(t)

	_, err := svc.StartSleep(ctx, testUser)
	require.NoError(t, err)

	clock.Advance(20 * time.Hour)
	_, err = svc.StartSleep(ctx, testUser)
	assert.NoError(t, err)
}

func TestWakeWithoutSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, _, err := svc.Wake(ctx, testUser, WakeRequest{})
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestWakeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.StartSleep(ctx, testUser)
	require.NoError(t, err)

	_, _, err = svc.Wake(ctx, testUser, WakeRequest{Quality: 9})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestImportSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	doc := []byte(`{"data":[
		{"createdAt":"2026-05-01T23:00:00Z","wakeUps":[{"awakenAt":"2026-05-02T07:00:00Z","quality":3}]},
		{"createdAt":"2026-05-02T23:30:00Z","wakeUps":[]}
	]}`)
	list, err := DecodeSessions(doc)
	require.NoError(t, err)

	n, err := svc.Import(ctx, testUser+1, list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Import(ctx, testUser+1, list)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err := svc.List(ctx, testUser+1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, stored[1].Completed())
	assert.Equal(t, testUser+1, stored[0].UserID)

	ids, err := svc.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{testUser + 1}, ids)
}
