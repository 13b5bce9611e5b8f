package realtime

import (
	"fmt"
	"log/slog"
)

// DefaultBufferSize is the per-subscriber channel buffer.
const DefaultBufferSize = 256

// Manager produces Channels for feed descriptors. It holds the injected
// transport opener and clock so every channel it creates can be exercised
// against fakes.
type Manager struct {
	dialer  Dialer
	clock   Clock
	logger  *slog.Logger
	bufSize int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock substitutes the retry timer source.
func WithClock(c Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) ManagerOption {
	return func(m *Manager) {
		m.bufSize = n
	}
}

// NewManager creates a Manager that opens transports with the given dialer.
func NewManager(dialer Dialer, opts ...ManagerOption) *Manager {
	m := &Manager{
		dialer:  dialer,
		clock:   realClock{},
		logger:  slog.Default(),
		bufSize: DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.bufSize < 1 {
		m.bufSize = 1
	}

	return m
}

// Channel returns a live handle for the descriptor. The descriptor is
// validated synchronously; transport-level problems are never surfaced
// here, only through the channel's state sequence. No connection is
// opened until the first subscription.
func (m *Manager) Channel(d Descriptor) (*Channel, error) {
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("descriptor %q: %w", d.Name, err)
	}

	logger := m.logger.With("feed", d.Name)
	return newChannel(d, m.dialer, m.clock, logger, m.bufSize), nil
}
