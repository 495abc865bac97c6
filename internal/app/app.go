// Package app assembles the sync core from configuration. Both binaries
// share it so the server and the CLI see the same store and remote.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vytor/likescenter/internal/config"
	"github.com/vytor/likescenter/internal/db"
	"github.com/vytor/likescenter/internal/engine"
	"github.com/vytor/likescenter/internal/flags"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/remote"
	"github.com/vytor/likescenter/internal/repository"
	"github.com/vytor/likescenter/internal/repository/sqlite"
	"github.com/vytor/likescenter/internal/services"
	badgerstore "github.com/vytor/likescenter/internal/storage/badger"
	"github.com/vytor/likescenter/internal/store"
	"github.com/vytor/likescenter/internal/unblur"
)

type App struct {
	DB     *db.DB
	Store  *store.Store
	Source remote.Source
	Engine *engine.Engine
	Window *unblur.Window
	Flags  *flags.Cache
	Likes  services.LikesService

	kv *badger.DB
}

// New opens storage and wires every component. Callers must Close the app.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.Default().WithPrefix("app")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{DB: database}

	var meta repository.MetadataRepository
	switch cfg.KVBackend {
	case config.KVBackendBadger:
		bcfg := badgerstore.DefaultConfig(cfg.BadgerPath)
		bcfg.Logger = logger.Default()
		if a.kv, err = badgerstore.Open(bcfg); err != nil {
			a.Close()
			return nil, fmt.Errorf("open badger: %w", err)
		}
		meta = badgerstore.NewMetadataRepository(a.kv)
	default:
		meta = sqlite.NewMetadataRepository(database.DB)
	}
	log.Debug("metadata backend: %s", cfg.KVBackend)

	if cfg.UsesMockRemote() {
		log.Info("no remote configured, serving the built-in mock feed")
		a.Source = remote.NewMockSource(time.Now(), cfg.MockLatency)
	} else {
		log.Info("remote source: %s", cfg.RemoteBaseURL)
		a.Source = remote.NewClient(cfg.RemoteBaseURL,
			remote.WithTimeout(cfg.RemoteTimeout),
			remote.WithRateLimit(cfg.RemoteRatePerSec),
		)
	}

	a.Store = store.New(sqlite.NewProfileRepository(database.DB))
	a.Engine = engine.New(a.Store, a.Source, engine.WithPageSize(cfg.PageSize))

	a.Window, err = unblur.New(ctx, meta, unblur.WithDuration(cfg.UnblurDuration))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load unblur window: %w", err)
	}
	a.Flags = flags.New(a.Source)
	a.Likes = services.NewLikesService(a.Store, a.Engine, a.Window, a.Flags)
	return a, nil
}

// Close releases storage handles.
func (a *App) Close() {
	log := logger.Default().WithPrefix("app")
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			log.Warn("closing badger: %v", err)
		}
	}
	if a.DB != nil {
		log.Debug("closing database connection")
		if err := a.DB.Close(); err != nil {
			log.Warn("closing database: %v", err)
		}
	}
}
