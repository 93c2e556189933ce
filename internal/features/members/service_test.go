package members

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/db/sqlite"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "members.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(NewSQLiteRepository(db), &config.Config{AppTimezone: "Europe/Moscow"})
}

func TestEnsureMember(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	require.NoError(t, svc.EnsureMember(ctx, 1, "luna", "Luna", ""))
	require.NoError(t, svc.EnsureMember(ctx, 1, "luna", "Luna", ""))

	m, err := svc.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "@luna", m.DisplayName())
	assert.Empty(t, m.Timezone)

	require.NoError(t, svc.EnsureMember(ctx, 1, "", "Luna", "Lovegood"))
	m, err = svc.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Luna Lovegood", m.DisplayName())

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.GetByUserID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRegisterKeepsProfile(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	require.NoError(t, svc.EnsureMember(ctx, 7, "mia", "Mia", "Lee"))
	require.NoError(t, svc.Register(ctx, 7))

	m, err := svc.GetByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "mia", m.Username)
	assert.Equal(t, "Mia", m.FirstName)
	assert.Equal(t, "Lee", m.LastName)

	require.NoError(t, svc.Register(ctx, 8))
	m, err = svc.GetByUserID(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, m.Username)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTimezone(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	require.NoError(t, svc.EnsureMember(ctx, 1, "luna", "Luna", ""))

	assert.Equal(t, "Europe/Moscow", svc.Location(ctx, 1).String())
	assert.Equal(t, "Europe/Moscow", svc.Location(ctx, 404).String(), "unknown members get the default")

	loc, err := svc.SetTimezone(ctx, 1, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
	assert.Equal(t, "America/New_York", svc.Location(ctx, 1).String())

	for _, bad := range []string{"", "Local", "Mars/Olympus"} {
		_, err = svc.SetTimezone(ctx, 1, bad)
		assert.ErrorIs(t, err, common.ErrInvalidTimezone, bad)
	}

	_, err = svc.SetTimezone(ctx, 404, "Europe/Berlin")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

type recordingSender struct {
	texts []string
}

func (s *recordingSender) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	s.texts = append(s.texts, params.Text)
	return &telego.Message{}, nil
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	require.NoError(t, svc.EnsureMember(ctx, 1, "luna", "Luna", ""))

	sender := &recordingSender{}
	h := NewHandler(svc, sender)
	h.clock = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }

	h.HandleTimezone(ctx, 1, 1, nil)
	h.HandleTimezone(ctx, 1, 1, []string{"Asia/Tokyo"})
	h.HandleTimezone(ctx, 1, 1, []string{"Nowhere/Land"})
	h.HandleMe(ctx, 1, 1)

	require.Len(t, sender.texts, 4)
	assert.Contains(t, sender.texts[0], "Europe/Moscow (local time 15:00)")
	assert.Contains(t, sender.texts[1], "Timezone set to Asia/Tokyo. Your local time is 21:00.")
	assert.Contains(t, sender.texts[2], "unknown timezone")
	assert.Contains(t, sender.texts[3], "@luna")
	assert.Contains(t, sender.texts[3], "Timezone: Asia/Tokyo")
}
