// Package store holds the loaded expense dataset of a page session.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
	"notesfrais/internal/ports"
)

// ErrLoadFailed wraps every failed fetch. The previous snapshot stays in place.
var ErrLoadFailed = errors.New("load expenses failed")

// Snapshot is an immutable view of the dataset at one load.
type Snapshot struct {
	Records  []core.ExpenseRecord
	LoadedAt time.Time
}

// DataStore is the single source of truth for the records of one page.
// Readers always see a complete snapshot; a load either replaces it whole
// or leaves it untouched.
type DataStore struct {
	lister  ports.ExpenseLister
	logger  *applog.Logger
	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	now     func() time.Time
}

// New creates an empty store backed by lister.
func New(lister ports.ExpenseLister, logger *applog.Logger) *DataStore {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &DataStore{
		lister: lister,
		logger: logger.WithComponent(applog.ComponentStore),
		now:    time.Now,
	}
	s.current.Store(&Snapshot{})
	return s
}

// Load fetches the full record set and swaps it in. Concurrent calls share
// one in-flight fetch. Failures are not retried.
func (s *DataStore) Load(ctx context.Context) error {
	_, err, shared := s.group.Do("load", func() (any, error) {
		records, err := s.lister.ListExpenses(ctx)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{Records: slices.Clip(records), LoadedAt: s.now()}
		s.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Expense load failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err,
			"kept_records", len(s.current.Load().Records))
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s.logger.DebugContext(ctx, "Expenses loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldRecords, len(s.current.Load().Records),
		"shared", shared)
	return nil
}

// All returns a copy of the current records in the order they were received.
func (s *DataStore) All() []core.ExpenseRecord {
	return slices.Clone(s.current.Load().Records)
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *DataStore) Snapshot() *Snapshot {
	return s.current.Load()
}

// Loaded reports whether at least one load has succeeded.
func (s *DataStore) Loaded() bool {
	return !s.current.Load().LoadedAt.IsZero()
}
