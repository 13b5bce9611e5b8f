package state

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/amadeus-trading/amadeus-console/internal/cache"
	"github.com/amadeus-trading/amadeus-console/internal/realtime"
)

type ordersSnapshot struct {
	Orders []string `json:"orders"`
}

func discardLogger[T any]() Option[T] {
	return WithLogger[T](slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// runStore starts Run in a goroutine and returns the feed channels plus
// a stop function that waits for the loop to exit.
func runStore[T any](t *testing.T, s *Store[T]) (chan T, chan realtime.State, func()) {
	t.Helper()

	msgs := make(chan T)
	states := make(chan realtime.State)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.Run(ctx, msgs, states)
	}()

	return msgs, states, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not exit")
		}
	}
}

// await polls until cond holds; feed updates land asynchronously.
func await(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStore_Empty(t *testing.T) {
	s := New[ordersSnapshot]("orders-stream", discardLogger[ordersSnapshot]())

	_, info, ok := s.Latest()
	if ok {
		t.Error("empty store reported a value")
	}
	if !info.Stale {
		t.Error("empty store should be stale")
	}
	if info.ConnState != realtime.StateDisconnected {
		t.Errorf("ConnState = %s, want disconnected", info.ConnState)
	}
}

func TestStore_AppliesMessages(t *testing.T) {
	s := New[ordersSnapshot]("orders-stream", discardLogger[ordersSnapshot]())
	msgs, states, stop := runStore(t, s)
	defer stop()

	states <- realtime.StateConnected
	msgs <- ordersSnapshot{Orders: []string{"ORD-1"}}

	await(t, "fresh snapshot", func() bool {
		v, info, ok := s.Latest()
		return ok && !info.Stale && len(v.Orders) == 1 && v.Orders[0] == "ORD-1"
	})
}

func TestStore_DisconnectMarksStale(t *testing.T) {
	s := New[ordersSnapshot]("orders-stream", discardLogger[ordersSnapshot]())
	msgs, states, stop := runStore(t, s)
	defer stop()

	states <- realtime.StateConnected
	msgs <- ordersSnapshot{Orders: []string{"ORD-1"}}
	await(t, "fresh snapshot", func() bool {
		_, info, ok := s.Latest()
		return ok && !info.Stale
	})

	states <- realtime.StateDisconnected
	await(t, "stale after disconnect", func() bool {
		v, info, ok := s.Latest()
		// The value survives; only freshness changes.
		return ok && info.Stale && len(v.Orders) == 1
	})

	// Reconnect plus a live update clears staleness.
	states <- realtime.StateConnected
	msgs <- ordersSnapshot{Orders: []string{"ORD-1", "ORD-2"}}
	await(t, "fresh after reconnect", func() bool {
		v, info, _ := s.Latest()
		return !info.Stale && len(v.Orders) == 2
	})
}

func TestStore_PrimeIsFresh(t *testing.T) {
	s := New[ordersSnapshot]("orders-stream", discardLogger[ordersSnapshot]())

	s.Prime(ordersSnapshot{Orders: []string{"ORD-1"}})

	v, info, ok := s.Latest()
	if !ok || info.Stale {
		t.Errorf("primed store: ok=%v stale=%v, want fresh value", ok, info.Stale)
	}
	if len(v.Orders) != 1 {
		t.Errorf("orders = %v, want primed snapshot", v.Orders)
	}
}

func TestStore_CacheRoundTrip(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("cache.Open failed: %v", err)
	}
	defer c.Close()

	s := New[ordersSnapshot]("orders-stream",
		discardLogger[ordersSnapshot](), WithCache[ordersSnapshot](c))
	msgs, _, stop := runStore(t, s)
	msgs <- ordersSnapshot{Orders: []string{"ORD-1"}}
	await(t, "snapshot applied", func() bool {
		_, _, ok := s.Latest()
		return ok
	})
	stop()

	// A second store simulates a restarted process.
	restarted := New[ordersSnapshot]("orders-stream",
		discardLogger[ordersSnapshot](), WithCache[ordersSnapshot](c))
	if err := restarted.LoadCached(context.Background()); err != nil {
		t.Fatalf("LoadCached failed: %v", err)
	}

	v, info, ok := restarted.Latest()
	if !ok {
		t.Fatal("restarted store has no value")
	}
	if !info.Stale {
		t.Error("cached snapshot must be stale until a live update arrives")
	}
	if len(v.Orders) != 1 || v.Orders[0] != "ORD-1" {
		t.Errorf("orders = %v, want persisted snapshot", v.Orders)
	}
}

func TestStore_LoadCachedMissingFeed(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("cache.Open failed: %v", err)
	}
	defer c.Close()

	s := New[ordersSnapshot]("orders-stream",
		discardLogger[ordersSnapshot](), WithCache[ordersSnapshot](c))
	if err := s.LoadCached(context.Background()); err != nil {
		t.Errorf("LoadCached with empty cache = %v, want nil", err)
	}
	if _, _, ok := s.Latest(); ok {
		t.Error("store should remain empty")
	}
}
