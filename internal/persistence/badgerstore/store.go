// Package badgerstore implements persistence.Store on an embedded BadgerDB.
//
// Badger transactions are optimistic and only detect conflicts on keys they
// read, so range scans cannot see a concurrent insert on their own. Every
// meeting write therefore bumps a guard key per room and per organizer, and
// every filtered meeting scan reads the matching guard. Two units that check
// the same room or organizer then conflict at commit and one is retried.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v4"
	"github.com/example/meeting-reservations/internal/persistence"
)

// Options configures Open.
type Options struct {
	// Dir is the data directory. Empty opens an in-memory database.
	Dir        string
	MaxRetries uint
	Logger     *slog.Logger
}

// Store is a persistence.Store backed by BadgerDB.
type Store struct {
	db         *badger.DB
	maxRetries uint
	logger     *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// Open opens or creates the database described by opts.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger_store")

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.Dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.WithLogger(slogAdapter{logger: logger}).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %q: %w", opts.Dir, err)
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 8
	}
	return &Store{db: db, maxRetries: opts.MaxRetries, logger: logger}, nil
}

// Atomic runs fn in a read-write transaction and re-runs it when the commit
// loses a conflict to a concurrent unit.
func (s *Store) Atomic(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			s.logger.DebugContext(ctx, "retrying transaction", "attempt", attempt)
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(&tx{txn: txn})
		})
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, badger.ErrConflict):
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxRetries+1))
	return err
}

// View runs fn in a read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&tx{txn: txn, readOnly: true})
	})
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// slogAdapter routes badger's printf-style logging into slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Infof(format string, args ...any) {
	a.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
