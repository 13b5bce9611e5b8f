package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Channel is a managed realtime subscription to one server-side data feed.
// It lazily opens a transport on first subscription, republishes decoded
// frames to all message subscribers, reports transport lifecycle through
// state subscribers, and reconnects after failure according to the
// descriptor's retry policy.
//
// Each Channel owns at most one transport at a time. Two Channels created
// from the same descriptor dial independently; there is no connection
// sharing across Channel instances.
type Channel struct {
	desc    Descriptor
	dialer  Dialer
	clock   Clock
	logger  *slog.Logger
	bufSize int

	mu        sync.Mutex
	msgSubs   map[*MessageSub]struct{}
	stateSubs map[*StateSub]struct{}
	state     State
	running   bool
	stop      chan struct{} // closed on last unsubscribe; ends the current lineage
	done      chan struct{} // closed when the retry budget is exhausted
}

func newChannel(desc Descriptor, dialer Dialer, clock Clock, logger *slog.Logger, bufSize int) *Channel {
	return &Channel{
		desc:      desc,
		dialer:    dialer,
		clock:     clock,
		logger:    logger,
		bufSize:   bufSize,
		msgSubs:   make(map[*MessageSub]struct{}),
		stateSubs: make(map[*StateSub]struct{}),
		state:     StateDisconnected,
		done:      make(chan struct{}),
	}
}

// MessageSub is one subscriber's view of a channel's decoded frames.
// The underlying Go channel is closed by Cancel.
type MessageSub struct {
	ch     chan json.RawMessage
	cancel func()
	once   sync.Once
}

// C returns the subscriber's frame channel. Frames arrive in transport
// order. The channel is closed when the subscription is cancelled.
func (s *MessageSub) C() <-chan json.RawMessage { return s.ch }

// Cancel ends the subscription. When the last subscriber across both
// sequences cancels, the underlying transport is closed.
func (s *MessageSub) Cancel() { s.once.Do(s.cancel) }

// StateSub is one subscriber's view of a channel's state transitions.
type StateSub struct {
	ch     chan State
	cancel func()
	once   sync.Once
}

// C returns the subscriber's state channel. The current state is delivered
// first when the channel is already live.
func (s *StateSub) C() <-chan State { return s.ch }

// Cancel ends the subscription.
func (s *StateSub) Cancel() { s.once.Do(s.cancel) }

// Name returns the descriptor name.
func (c *Channel) Name() string { return c.desc.Name }

// Descriptor returns the immutable configuration this channel was built from.
func (c *Channel) Descriptor() Descriptor { return c.desc }

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the retry budget of the current
// connection lineage is exhausted. The connection state stays
// disconnected permanently after that; callers that want the feed back
// must tear down all subscriptions and subscribe again.
func (c *Channel) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// SubscribeMessages registers a new message subscriber. The first
// subscriber on an idle channel triggers the connection attempt.
func (c *Channel) SubscribeMessages() *MessageSub {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &MessageSub{ch: make(chan json.RawMessage, c.bufSize)}
	sub.cancel = func() { c.dropMessageSub(sub) }
	c.msgSubs[sub] = struct{}{}
	c.ensureRunningLocked()
	return sub
}

// SubscribeStates registers a new state subscriber. The first subscriber
// on an idle channel triggers the connection attempt.
func (c *Channel) SubscribeStates() *StateSub {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &StateSub{ch: make(chan State, c.bufSize)}
	sub.cancel = func() { c.dropStateSub(sub) }
	c.stateSubs[sub] = struct{}{}

	alreadyRunning := c.running
	c.ensureRunningLocked()
	if alreadyRunning {
		// Late subscriber: seed with the current state so consumers can
		// render an indicator immediately.
		sub.ch <- c.state
	}
	return sub
}

// ensureRunningLocked starts a fresh connection lineage if none is live.
// Must be called with c.mu held.
func (c *Channel) ensureRunningLocked() {
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
}

func (c *Channel) dropMessageSub(sub *MessageSub) {
	c.mu.Lock()
	delete(c.msgSubs, sub)
	close(sub.ch)
	stop := c.teardownIfIdleLocked()
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

func (c *Channel) dropStateSub(sub *StateSub) {
	c.mu.Lock()
	delete(c.stateSubs, sub)
	close(sub.ch)
	stop := c.teardownIfIdleLocked()
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// teardownIfIdleLocked returns the stop channel to close if the last
// subscriber just left. Must be called with c.mu held.
func (c *Channel) teardownIfIdleLocked() chan struct{} {
	if !c.running || len(c.msgSubs)+len(c.stateSubs) > 0 {
		return nil
	}
	c.running = false
	return c.stop
}

// transition records and broadcasts a state change. Sends are
// non-blocking: a subscriber that falls behind its buffer misses
// intermediate transitions but always receives a later one.
func (c *Channel) transition(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
	for sub := range c.stateSubs {
		select {
		case sub.ch <- s:
		default:
			c.logger.Warn("state subscriber buffer full, dropping transition", "state", s)
		}
	}
}

// broadcast republishes one decoded frame to all message subscribers.
func (c *Channel) broadcast(payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub := range c.msgSubs {
		select {
		case sub.ch <- payload:
		default:
			c.logger.Warn("message subscriber buffer full, dropping frame")
		}
	}
}

// run drives one connection lineage: connect, pump frames, reconnect
// after failure until the retry budget runs out or the last subscriber
// leaves. All state transitions for the lineage are emitted here, in
// order, before any frame associated with them.
func (c *Channel) run(stop, done chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	remaining := c.desc.RetryAttempts

	for {
		c.transition(StateConnecting)

		tr, err := c.dialer.Dial(ctx, c.desc.Path)
		if err == nil {
			c.transition(StateConnected)
			c.pump(stop, tr)
			tr.Close()
		} else {
			c.logger.Warn("connect failed", "path", c.desc.Path, "error", err)
		}

		select {
		case <-stop:
			return
		default:
		}

		c.transition(StateDisconnected)

		if remaining == 0 {
			c.logger.Warn("retry budget exhausted, feed stays disconnected",
				"path", c.desc.Path,
				"attempts", c.desc.RetryAttempts,
			)
			close(done)
			return
		}
		if remaining > 0 {
			remaining--
		}

		select {
		case <-stop:
			return
		case <-c.clock.After(c.desc.RetryDelay):
		}
	}
}

// pump reads frames until the transport fails or the lineage stops.
// Malformed frames are logged and dropped; they never affect connection
// state or the ordering of later frames.
func (c *Channel) pump(stop chan struct{}, tr Transport) {
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-stop:
			tr.Close()
		case <-readDone:
		}
	}()

	for {
		data, err := tr.ReadMessage()
		if err != nil {
			select {
			case <-stop:
			default:
				c.logger.Warn("transport closed", "path", c.desc.Path, "error", err)
			}
			return
		}

		if !json.Valid(data) {
			c.logger.Warn("dropping malformed frame", "bytes", len(data))
			continue
		}

		c.broadcast(json.RawMessage(data))
	}
}
