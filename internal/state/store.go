// Package state tracks the latest known snapshot per feed together with
// its freshness. Consumers render from a Store without caring whether
// the value arrived over the realtime channel, a REST prime, or the
// local cache after a restart.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amadeus-trading/amadeus-console/internal/cache"
	"github.com/amadeus-trading/amadeus-console/internal/realtime"
)

// Info describes the provenance of the snapshot returned by Latest.
type Info struct {
	// UpdatedAt is when the snapshot was last replaced. Zero when no
	// snapshot has ever been seen.
	UpdatedAt time.Time
	// Stale is true when the snapshot predates the current connection:
	// cached values loaded at startup, and any value after the feed
	// reports disconnected.
	Stale bool
	// ConnState is the feed's last reported connection state.
	ConnState realtime.State
}

// Store holds the latest value of one feed.
type Store[T any] struct {
	feedName string
	logger   *slog.Logger
	cache    *cache.Store

	mu        sync.RWMutex
	latest    T
	hasValue  bool
	updatedAt time.Time
	stale     bool
	connState realtime.State
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithLogger sets the logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(s *Store[T]) {
		s.logger = logger.With("feed", s.feedName)
	}
}

// WithCache enables snapshot persistence: every update is written
// through, and LoadCached can restore the last value after a restart.
func WithCache[T any](c *cache.Store) Option[T] {
	return func(s *Store[T]) {
		s.cache = c
	}
}

// New creates a Store for the named feed.
func New[T any](feedName string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		feedName:  feedName,
		logger:    slog.Default().With("feed", feedName),
		connState: realtime.StateDisconnected,
		stale:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prime seeds the store from a REST snapshot. Primed values count as
// fresh: they reflect the gateway's current state even though they did
// not arrive over the feed.
func (s *Store[T]) Prime(v T) {
	s.mu.Lock()
	s.latest = v
	s.hasValue = true
	s.updatedAt = time.Now()
	s.stale = false
	s.mu.Unlock()

	s.persist(v)
}

// LoadCached restores the last persisted snapshot, if any. Restored
// values are marked stale until the feed delivers a live update. It is
// a no-op when the store has no cache or the store already holds a
// value.
func (s *Store[T]) LoadCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasValue {
		return nil
	}

	snap, err := s.cache.Get(ctx, s.feedName)
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cached snapshot: %w", err)
	}

	var v T
	if err := json.Unmarshal(snap.Payload, &v); err != nil {
		return fmt.Errorf("decode cached snapshot: %w", err)
	}

	s.latest = v
	s.hasValue = true
	s.updatedAt = time.UnixMilli(snap.UpdatedUnixMillis)
	s.stale = true
	return nil
}

// Run consumes the feed's decoded messages and connection states until
// the context is cancelled or both channels close. Callers typically
// run it in its own goroutine, one per feed.
func (s *Store[T]) Run(ctx context.Context, msgs <-chan T, states <-chan realtime.State) {
	for msgs != nil || states != nil {
		select {
		case <-ctx.Done():
			return

		case v, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			s.apply(v)

		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			s.applyState(st)
		}
	}
}

func (s *Store[T]) apply(v T) {
	s.mu.Lock()
	s.latest = v
	s.hasValue = true
	s.updatedAt = time.Now()
	s.stale = false
	s.mu.Unlock()

	s.persist(v)
}

func (s *Store[T]) applyState(st realtime.State) {
	s.mu.Lock()
	s.connState = st
	if st == realtime.StateDisconnected {
		s.stale = true
	}
	s.mu.Unlock()

	s.logger.Debug("feed connection state", "state", string(st))
}

func (s *Store[T]) persist(v T) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("marshal snapshot for cache", "error", err)
		return
	}
	if err := s.cache.Put(context.Background(), s.feedName, payload); err != nil {
		s.logger.Warn("persist snapshot", "error", err)
	}
}

// Latest returns the current snapshot and its provenance. The second
// return is false when no snapshot has ever been seen.
func (s *Store[T]) Latest() (T, Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, Info{
		UpdatedAt: s.updatedAt,
		Stale:     s.stale,
		ConnState: s.connState,
	}, s.hasValue
}

// ConnState returns the feed's last reported connection state.
func (s *Store[T]) ConnState() realtime.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connState
}

// Status is the type-erased view of a Store, for health and debug
// surfaces that aggregate stores of different payload types.
type Status struct {
	Feed     string `json:"feed"`
	HasValue bool   `json:"has_value"`
	Stale    bool   `json:"stale"`
	// UpdatedUnixMillis is zero when no snapshot has been seen.
	UpdatedUnixMillis int64  `json:"updated_unix_millis"`
	ConnState         string `json:"conn_state"`
}

// StatusReporter is implemented by every Store regardless of payload type.
type StatusReporter interface {
	Status() Status
}

// Status implements StatusReporter.
func (s *Store[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var updated int64
	if !s.updatedAt.IsZero() {
		updated = s.updatedAt.UnixMilli()
	}
	return Status{
		Feed:              s.feedName,
		HasValue:          s.hasValue,
		Stale:             s.stale,
		UpdatedUnixMillis: updated,
		ConnState:         string(s.connState),
	}
}
