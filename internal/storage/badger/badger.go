// Package badger provides a BadgerDB-backed MetadataRepository for
// deployments that keep local state outside SQLite.
package badger

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/repository"
)

// keyPrefix namespaces metadata keys inside the store.
const keyPrefix = "meta/"

// Config configures the BadgerDB instance.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	InMemory   bool
	SyncWrites bool

	// Logger receives Badger's internal messages. Nil silences them.
	Logger *logger.Logger
}

// DefaultConfig returns a durable on-disk configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(strings.TrimSuffix(format, "\n"), args...)
}

// Badger is chatty at info level; demote it.
func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSuffix(format, "\n"), args...)
}

// Open opens a Badger database. The caller must Close it.
func Open(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, stderrors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{log: cfg.Logger.WithPrefix("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

type metadataRepository struct {
	db *badger.DB
}

// NewMetadataRepository creates a MetadataRepository stored in db.
func NewMetadataRepository(db *badger.DB) repository.MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("metadata_kv").Error("failed to get metadata[%s]: %v", key, err)
		return nil, fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *metadataRepository) Set(ctx context.Context, key string, value []byte) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), value)
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("metadata_kv").Error("failed to set metadata[%s]: %v", key, err)
		return fmt.Errorf("set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *metadataRepository) Delete(ctx context.Context, key string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("metadata_kv").Error("failed to delete metadata[%s]: %v", key, err)
		return fmt.Errorf("delete metadata[%s]: %w", key, err)
	}
	return nil
}
