package realtime

import (
	"errors"
	"time"
)

// Errors
var (
	ErrEmptyPath            = errors.New("descriptor path is required")
	ErrInvalidRetryAttempts = errors.New("retry attempts must be >= 0 or RetryUnbounded")
	ErrInvalidRetryDelay    = errors.New("retry delay must be >= 0")
)

// RetryUnbounded marks a descriptor whose channel retries forever.
const RetryUnbounded = -1

// DefaultRetryDelay is the standard interval between reconnect attempts.
const DefaultRetryDelay = time.Second

// State describes the transport lifecycle of a channel.
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// Descriptor is the immutable configuration used to create a Channel.
type Descriptor struct {
	Name          string        // Identification and logging only; never transmitted.
	Path          string        // Endpoint address, resolved against the dialer's base origin.
	RetryAttempts int           // Reconnect budget: >= 0, or RetryUnbounded.
	RetryDelay    time.Duration // Fixed wait between reconnect attempts.
}

// NewDescriptor returns a descriptor with the default retry policy:
// unbounded attempts spaced DefaultRetryDelay apart. Disconnection is
// treated as transient unless the caller overrides RetryAttempts.
func NewDescriptor(name, path string) Descriptor {
	return Descriptor{
		Name:          name,
		Path:          path,
		RetryAttempts: RetryUnbounded,
		RetryDelay:    DefaultRetryDelay,
	}
}

func (d Descriptor) validate() error {
	if d.Path == "" {
		return ErrEmptyPath
	}
	if d.RetryAttempts < RetryUnbounded {
		return ErrInvalidRetryAttempts
	}
	if d.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}
	return nil
}
