// Package app wires the application together: storage, Telegram client,
// repositories, services, handlers and the scheduler.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"dreamweaver.app/sleep-bot/internal/bot"
	"dreamweaver.app/sleep-bot/internal/bot/filters"
	"dreamweaver.app/sleep-bot/internal/config"
	"dreamweaver.app/sleep-bot/internal/db/postgres"
	"dreamweaver.app/sleep-bot/internal/db/sqlite"
	"dreamweaver.app/sleep-bot/internal/features/admin"
	"dreamweaver.app/sleep-bot/internal/features/members"
	"dreamweaver.app/sleep-bot/internal/features/sessions"
	"dreamweaver.app/sleep-bot/internal/features/streak"
	"dreamweaver.app/sleep-bot/internal/jobs"
)

// App holds the running components.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Storage   *Storage
}

// Storage is one opened backend with its repositories.
type Storage struct {
	Members  members.Repository
	Sessions sessions.Repository
	Admin    admin.Repository

	close func()
}

// Close releases the database.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage opens the backend selected by STORAGE_BACKEND and applies the schema.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		return sqliteStorage(db), nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return postgresStorage(pool), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func sqliteStorage(db *sql.DB) *Storage {
	return &Storage{
		Members:  members.NewSQLiteRepository(db),
		Sessions: sessions.NewSQLiteRepository(db),
		Admin:    admin.NewSQLiteRepository(db),
		close: func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("Failed to close SQLite")
			}
		},
	}
}

func postgresStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		Members:  members.NewPostgresRepository(pool),
		Sessions: sessions.NewPostgresRepository(pool),
		Admin:    admin.NewPostgresRepository(pool),
		close:    pool.Close,
	}
}

// New creates and wires the application. Order matters: services depend
// on repositories, handlers on services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Storage ===
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// === 2. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken, telego.WithLogger(newTelegoLogger(cfg.TelegramBotToken)))
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to create Telegram client: %w", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to authorize with Telegram: %w", err)
	}
	log.Infof("Authorized as @%s", me.Username)

	// === 3. Services ===
	memberService := members.NewService(storage.Members, cfg)
	sessionService := sessions.NewService(storage.Sessions, cfg)
	streakService := streak.NewService(sessionService, memberService, cfg)
	adminService := admin.NewService(storage.Admin, memberService, sessionService, streakService, cfg)

	// === 4. Handlers ===
	memberHandler := members.NewHandler(memberService, api)
	sleepHandler := sessions.NewHandler(sessionService, memberService, api)
	streakHandler := streak.NewHandler(streakService, api)
	adminHandler := admin.NewHandler(adminService, api)

	// === 5. Filters ===
	chatFilter := filters.NewChatFilter(api, me.Username)

	// === 6. Bot ===
	b := bot.New(
		api, cfg,
		memberService, memberHandler,
		sleepHandler,
		streakHandler,
		adminHandler,
		chatFilter,
	)

	// === 7. Scheduler ===
	scheduler := jobs.NewScheduler(cfg, streakService, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Storage:   storage,
	}, nil
}
