package admin

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"dreamweaver.app/sleep-bot/internal/common"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/db/sqlite"
	"dreamweaver.app/sleep-bot/internal/features/members"
	"dreamweaver.app/sleep-bot/internal/features/streak"
)

const (
	adminID  int64 = 100
	userID   int64 = 200
	password       = "correct horse"
)

// testHash uses cheap parameters so the suite stays fast.
func testHash(pw string) string {
	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte(pw), salt, 1, 1024, 1, 32)
	return fmt.Sprintf("$argon2id$v=19$m=1024,t=1,p=1$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(hash))
}

type fakeDirectory map[int64]*members.Member

func (d fakeDirectory) Count(context.Context) (int, error) { return len(d), nil }

func (d fakeDirectory) GetByUserID(_ context.Context, id int64) (*members.Member, error) {
	if m, ok := d[id]; ok {
		return m, nil
	}
	return nil, common.ErrNotFound
}

type fakeCounter int

func (c fakeCounter) CountCompleted(context.Context) (int, error) { return int(c), nil }

type fakeBoard []streak.Entry

func (b fakeBoard) Leaderboard(_ context.Context, limit int) ([]streak.Entry, error) {
	return b[:min(limit, len(b))], nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setupService(t *testing.T) (*Service, *clock) {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{AdminIDs: []int64{adminID}, AdminPasswordHash: testHash(password)}
	dir := fakeDirectory{
		adminID: {UserID: adminID, Username: "root"},
		userID:  {UserID: userID, FirstName: "Mia"},
	}
	board := fakeBoard{
		{UserID: userID, Stats: streak.Stats{CurrentStreak: 9, LongestStreak: 12, TotalSessions: 30}},
		{UserID: 999, Stats: streak.Stats{CurrentStreak: 1, LongestStreak: 1, TotalSessions: 1}},
	}
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(NewSQLiteRepository(db), dir, fakeCounter(1234), board, cfg).WithClock(c.Now)
	return svc, c
}

func TestVerifyArgon2id(t *testing.T) {
	hash := testHash(password)
	assert.True(t, verifyArgon2id(password, hash))
	assert.False(t, verifyArgon2id("wrong", hash))
	assert.False(t, verifyArgon2id(password, "not-a-hash"))
	assert.False(t, verifyArgon2id(password, "$argon2id$v=19$m=x$a$b"))
}

func TestLoginAndSession(t *testing.T) {
	ctx := context.Background()
	svc, c := setupService(t)

	assert.ErrorIs(t, svc.Login(ctx, userID, password), common.ErrNotAdmin)
	assert.False(t, svc.HasActiveSession(ctx, adminID))

	require.NoError(t, svc.Login(ctx, adminID, password))
	assert.True(t, svc.HasActiveSession(ctx, adminID))

	c.now = c.now.Add(25 * time.Hour)
	assert.False(t, svc.HasActiveSession(ctx, adminID), "sessions expire after 24h")

	require.NoError(t, svc.Login(ctx, adminID, password))
	require.NoError(t, svc.Logout(ctx, adminID))
	assert.False(t, svc.HasActiveSession(ctx, adminID))
}

func TestBruteForceLockout(t *testing.T) {
	ctx := context.Background()
	svc, c := setupService(t)

	for i := 0; i < maxFailedAttempts; i++ {
		assert.ErrorIs(t, svc.Login(ctx, adminID, "guess"), common.ErrWrongPassword)
		c.now = c.now.Add(time.Minute)
	}
	assert.ErrorIs(t, svc.Login(ctx, adminID, password), common.ErrTooManyAttempts)

	c.now = c.now.Add(time.Hour)
	assert.NoError(t, svc.Login(ctx, adminID, password))
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Overview(ctx, adminID)
	assert.ErrorIs(t, err, common.ErrNotAdmin)

	require.NoError(t, svc.Login(ctx, adminID, password))
	o, err := svc.Overview(ctx, adminID)
	require.NoError(t, err)

	assert.Equal(t, 2, o.Members)
	assert.Equal(t, 1234, o.CompletedSessions)
	require.Len(t, o.Top, 2)
	assert.Equal(t, TopSleeper{Name: "Mia", CurrentStreak: 9, LongestStreak: 12}, o.Top[0])
	assert.Equal(t, "id999", o.Top[1].Name)

	text := FormatOverview(o)
	assert.Contains(t, text, "Completed sessions: 1,234")
	assert.Contains(t, text, "1st Mia: 9 days (best 12 days)")
	assert.Contains(t, text, "2nd id999: 1 day (best 1 day)")
}

type fakeBot struct {
	texts   []string
	deleted []int
}

func (b *fakeBot) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	b.texts = append(b.texts, params.Text)
	return &telego.Message{}, nil
}

func (b *fakeBot) DeleteMessage(_ context.Context, params *telego.DeleteMessageParams) error {
	b.deleted = append(b.deleted, params.MessageID)
	return nil
}

func TestPasswordDialog(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	bot := &fakeBot{}
	h := NewHandler(svc, bot)

	assert.False(t, h.HandleText(ctx, adminID, adminID, 1, "hello"))
	assert.False(t, h.AwaitingPassword(adminID))

	h.HandleLogin(ctx, adminID, adminID, 2, nil)
	assert.True(t, h.AwaitingPassword(adminID))
	assert.True(t, h.HandleText(ctx, adminID, adminID, 3, password))
	assert.False(t, h.AwaitingPassword(adminID), "the dialog ends with the password")
	assert.Equal(t, []int{3}, bot.deleted)
	assert.True(t, svc.HasActiveSession(ctx, adminID))

	h.HandleOverview(ctx, adminID, adminID)
	h.HandleLogin(ctx, userID, userID, 4, []string{"x"})

	require.Len(t, bot.texts, 4)
	assert.Contains(t, bot.texts[0], "Send the admin password")
	assert.Contains(t, bot.texts[1], "Logged in")
	assert.Contains(t, bot.texts[2], "Overview")
	assert.Contains(t, bot.texts[3], "not an administrator")
}
