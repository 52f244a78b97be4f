/*
Package sqlstore is a store.Store persisted with gorm to a sqlite database. Every mutation runs in a single transaction
together with its activity entries.
*/
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/anchore/riskboard/internal/gormadapter"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
)

var _ store.Store = (*Store)(nil)

type Config struct {
	// Path to the sqlite file; empty opens a private in-memory database.
	Path  string
	Debug bool
	// Reset discards any existing database at Path before opening.
	Reset bool
}

type Store struct {
	*findingStore
	*assetStore
	db   *gorm.DB
	opts store.Options
}

// Open connects to (creating and migrating when needed) the database described by the config.
func Open(cfg Config, opts ...store.Option) (*Store, error) {
	db, err := gormadapter.Open(cfg.Path,
		gormadapter.WithDebug(cfg.Debug),
		gormadapter.WithWritable(true, model.Models()),
		gormadapter.WithTruncate(cfg.Reset && cfg.Path != ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an already migrated database handle.
func New(db *gorm.DB, opts ...store.Option) *Store {
	o := store.NewOptions(opts...)
	return &Store{
		findingStore: newFindingStore(db, o),
		assetStore:   newAssetStore(db, o),
		db:           db,
		opts:         o,
	}
}

func (s *Store) ListActivity(ctx context.Context, f store.ActivityFilter) ([]model.ActivityLogEntry, error) {
	entries, err := s.opts.Recorder(activity.NewGormRecorder(s.db)).List(ctx, f)
	if err != nil {
		return nil, wrap("list activity", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	log.Debug("closing store")
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB handle: %w", err)
	}
	return sqlDB.Close()
}

// withTx runs fn in a transaction; the audit recorder handed to fn writes through the same transaction.
func withTx(ctx context.Context, db *gorm.DB, opts store.Options, fn func(tx *gorm.DB, audit auditFunc) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recorder := opts.Recorder(activity.NewGormRecorder(tx))
		audit := func(entries ...model.ActivityLogEntry) error {
			if _, err := recorder.Record(ctx, entries...); err != nil {
				e := &rberr.AuditWriteError{Err: err}
				if len(entries) > 0 {
					e.EntityType = string(entries[0].EntityType)
					e.EntityID = entries[0].EntityID
				}
				return e
			}
			return nil
		}
		return fn(tx, audit)
	})
}

type auditFunc func(entries ...model.ActivityLogEntry) error

// wrap maps backend errors onto the store error taxonomy, passing domain errors through untouched.
func wrap(op string, err error) error {
	var (
		validation *rberr.ValidationError
		audit      *rberr.AuditWriteError
		storeErr   *rberr.StoreError
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return rberr.ErrNotFound
	case errors.Is(err, rberr.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &validation),
		errors.As(err, &audit),
		errors.As(err, &storeErr):
		return err
	}
	return &rberr.StoreError{Op: op, Err: err}
}
