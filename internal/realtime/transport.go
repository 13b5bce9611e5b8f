package realtime

import (
	"context"
	"time"
)

// Transport is a single established connection to a feed endpoint.
type Transport interface {
	// ReadMessage blocks until the next frame arrives. It returns an error
	// when the transport fails or is closed; any error ends the connection
	// attempt that owns it.
	ReadMessage() ([]byte, error)

	// Close tears down the transport. ReadMessage unblocks with an error.
	Close() error
}

// Dialer opens transports. The production implementation dials WebSockets
// against the gateway origin; tests substitute scripted fakes.
type Dialer interface {
	Dial(ctx context.Context, path string) (Transport, error)
}

// Clock abstracts retry timing so tests can drive reconnects with
// simulated time.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
