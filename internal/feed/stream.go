package feed

import (
	"encoding/json"
	"log/slog"

	"github.com/amadeus-trading/amadeus-console/internal/realtime"
)

// Stream decodes a channel's raw frames into typed payloads. Frames that
// do not decode into T are logged and dropped; later frames are
// unaffected, matching the channel's own handling of malformed JSON.
type Stream[T any] struct {
	sub    *realtime.MessageSub
	out    chan T
	logger *slog.Logger
}

// NewStream subscribes to the channel's messages and starts decoding.
// Cancel the stream to release the subscription; the output channel
// closes once the subscription ends.
func NewStream[T any](ch *realtime.Channel, logger *slog.Logger) *Stream[T] {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stream[T]{
		sub:    ch.SubscribeMessages(),
		out:    make(chan T, realtime.DefaultBufferSize),
		logger: logger.With("feed", ch.Name()),
	}

	go s.decodeLoop()
	return s
}

// C returns the decoded payload channel.
func (s *Stream[T]) C() <-chan T { return s.out }

// Cancel ends the stream and its underlying channel subscription.
func (s *Stream[T]) Cancel() { s.sub.Cancel() }

func (s *Stream[T]) decodeLoop() {
	defer close(s.out)

	for raw := range s.sub.C() {
		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			s.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}

		select {
		case s.out <- payload:
		default:
			s.logger.Warn("stream consumer behind, dropping payload")
		}
	}
}
