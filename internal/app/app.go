// Package app wires the sync engine together: database and migrations,
// record store, shared read cache, credential refresh, remote client, sync
// orchestrator, and status pollers.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/scott12355/MeditationApp-sub000/internal/auth"
	"github.com/scott12355/MeditationApp-sub000/internal/config"
	"github.com/scott12355/MeditationApp-sub000/internal/dbx"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/migrations"
	"github.com/scott12355/MeditationApp-sub000/internal/netx"
	"github.com/scott12355/MeditationApp-sub000/internal/poller"
	"github.com/scott12355/MeditationApp-sub000/internal/remote"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/credentials"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/insights"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/sessions"
	"github.com/scott12355/MeditationApp-sub000/internal/sessioncache"
	"github.com/scott12355/MeditationApp-sub000/internal/store"
	"github.com/scott12355/MeditationApp-sub000/internal/syncer"

	_ "modernc.org/sqlite"
)

// App holds the assembled sync engine.
type App struct {
	cfg *config.Config
	db  *sql.DB
	log logging.Logger

	Store       *store.Store
	SharedCache *sessioncache.Cache
	Credentials credentials.Repository
	Refresher   *auth.RefreshManager
	Client      remote.Client
	Syncer      *syncer.Orchestrator
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local database and brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// New assembles the engine from cfg. The caller owns the returned App and
// must Close it.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewSQLiteRepository(db)
	refresher := auth.NewRefreshManager(db, auth.NewHTTPTokenExchanger(cfg.TokenEndpointURL),
		cfg.RefreshCooldown, cfg.RefreshMaxAttempts, log)
	client := remote.NewGraphQLClient(cfg.APIEndpointURL, creds, refresher, log)

	checker, err := netx.NewDialChecker(cfg.APIEndpointURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid api endpoint: %w", err)
	}

	st := store.New(db, cfg.RecordCacheTTL, log)
	shared := sessioncache.New(st)

	identity := func(ctx context.Context) (string, error) {
		return auth.CurrentUserID(ctx, creds)
	}
	orch := syncer.New(st, shared, client, checker, identity,
		cfg.SyncCooldown, cfg.InsightFreshnessGrace, log)

	return &App{
		cfg:         cfg,
		db:          db,
		log:         log,
		Store:       st,
		SharedCache: shared,
		Credentials: creds,
		Refresher:   refresher,
		Client:      client,
		Syncer:      orch,
	}, nil
}

// NewStatusPoller builds a poller for one in-flight session generation using
// the app's remote client and configured cadence.
func (a *App) NewStatusPoller(sessionID string, observer poller.Observer) *poller.Poller {
	return poller.New(a.Client, sessionID, a.cfg.PollInterval, a.cfg.PollMaxDuration, observer, a.log)
}

// Logout wipes all local user data in one transaction, then drops both
// caches. A partially wiped database must never survive a crash mid-logout.
func (a *App) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, a.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := sessions.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if _, err := insights.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return credentials.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	a.Store.InvalidateCache()
	a.SharedCache.ClearAll()
	a.log.Info(ctx, "logged out, local data cleared")
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}
