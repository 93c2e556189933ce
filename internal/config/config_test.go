package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLiteDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", " 10, 20 ,")
	t.Setenv("ADMIN_PASSWORD_HASH", "$argon2id$x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20}, cfg.AdminIDs)
	assert.True(t, cfg.IsAdmin(20))
	assert.False(t, cfg.IsAdmin(30))
	assert.Equal(t, 16*time.Hour, cfg.SessionActiveWindow)
	assert.Equal(t, "0 21 * * *", cfg.StreakReminderCron)
	assert.Equal(t, "data/dreamweaver.db", cfg.SQLitePath)
}

func TestLoadRejectsBadAdminIDs(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("ADMIN_IDS", "10,abc")

	_, err := LoadStorage()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			TelegramBotToken:        "t",
			StorageBackend:          BackendPostgres,
			DBPassword:              "secret",
			DBMaxConns:              10,
			DBMinConns:              1,
			AppTimezone:             "UTC",
			BotMaxInflight:          8,
			BotUpdateTimeoutSeconds: 30,
			SessionActiveWindow:     time.Hour,
			StreakReminderThreshold: 3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid postgres", func(c *Config) {}, false},
		{"postgres without password", func(c *Config) { c.DBPassword = "" }, true},
		{"min conns above max", func(c *Config) { c.DBMinConns = 20 }, true},
		{"unknown backend", func(c *Config) { c.StorageBackend = "mysql" }, true},
		{"sqlite needs no password", func(c *Config) {
			c.StorageBackend = BackendSQLite
			c.SQLitePath = "x.db"
			c.DBPassword = ""
		}, false},
		{"missing token", func(c *Config) { c.TelegramBotToken = "" }, true},
		{"bad timezone", func(c *Config) { c.AppTimezone = "Mars/Olympus" }, true},
		{"zero window", func(c *Config) { c.SessionActiveWindow = 0 }, true},
		{"admins without hash", func(c *Config) { c.AdminIDs = []int64{1} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432, DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseDSN())
}
