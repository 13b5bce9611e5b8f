package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// fakeTransport is a scripted transport. Frames are delivered through
// Push; Fail simulates an abrupt server-side close.
type fakeTransport struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case f := <-t.frames:
		return f, nil
	case <-t.closed:
		return nil, errors.New("connection reset")
	}
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) Push(frame string) { t.frames <- []byte(frame) }
func (t *fakeTransport) Fail()             { t.Close() }

type dialOutcome struct {
	tr  *fakeTransport
	err error
}

// fakeDialer serves scripted outcomes in order. Once the script runs
// out, every dial fails.
type fakeDialer struct {
	mu     sync.Mutex
	script []dialOutcome
	dials  int
	dialed chan struct{}
}

func newFakeDialer(script ...dialOutcome) *fakeDialer {
	return &fakeDialer{
		script: script,
		dialed: make(chan struct{}, 64),
	}
}

func (d *fakeDialer) Dial(ctx context.Context, path string) (Transport, error) {
	d.mu.Lock()
	d.dials++
	out := dialOutcome{err: errors.New("gateway unreachable")}
	if len(d.script) > 0 {
		out = d.script[0]
		d.script = d.script[1:]
	}
	d.mu.Unlock()

	d.dialed <- struct{}{}

	if out.err != nil {
		return nil, out.err
	}
	return out.tr, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// fakeClock collects retry waiters and releases them on Advance. Each
// After call signals the waiting channel so tests know the reconnect
// loop has parked.
type fakeClock struct {
	mu      sync.Mutex
	waiters []chan time.Time
	waiting chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{waiting: make(chan struct{}, 64)}
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	c.waiting <- struct{}{}
	return ch
}

func (c *fakeClock) Advance() {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, w := range waiters {
		w <- time.Now()
	}
}

func newTestManager(d Dialer, c Clock) *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(d, WithClock(c), WithLogger(logger))
}

func awaitSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func awaitState(t *testing.T, sub *StateSub, want State) {
	t.Helper()
	select {
	case got := <-sub.C():
		if got != want {
			t.Fatalf("state = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for state %q", want)
	}
}

func awaitMessage(t *testing.T, sub *MessageSub) json.RawMessage {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestChannel_InvalidDescriptor(t *testing.T) {
	mgr := newTestManager(newFakeDialer(), newFakeClock())

	tests := []struct {
		name    string
		desc    Descriptor
		wantErr error
	}{
		{"empty path", Descriptor{Name: "x", RetryAttempts: RetryUnbounded}, ErrEmptyPath},
		{"negative attempts", Descriptor{Name: "x", Path: "/ws/x", RetryAttempts: -2}, ErrInvalidRetryAttempts},
		{"negative delay", Descriptor{Name: "x", Path: "/ws/x", RetryDelay: -time.Second}, ErrInvalidRetryDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.Channel(tt.desc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Channel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := mgr.Channel(NewDescriptor("ok", "/ws/ok")); err != nil {
		t.Errorf("valid descriptor rejected: %v", err)
	}
}

func TestChannel_LazyStart(t *testing.T) {
	dialer := newFakeDialer(dialOutcome{tr: newFakeTransport()})
	mgr := newTestManager(dialer, newFakeClock())

	ch, err := mgr.Channel(NewDescriptor("lazy", "/ws/lazy"))
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if n := dialer.dialCount(); n != 0 {
		t.Fatalf("dials before subscribe = %d, want 0", n)
	}

	sub := ch.SubscribeMessages()
	defer sub.Cancel()

	awaitSignal(t, dialer.dialed, "no dial after first subscribe")
}

func TestChannel_DeliversFramesInOrder(t *testing.T) {
	tr := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr})
	mgr := newTestManager(dialer, newFakeClock())

	ch, err := mgr.Channel(NewDescriptor("orders", "/ws/orders"))
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}

	states := ch.SubscribeStates()
	defer states.Cancel()
	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)

	frames := []string{
		`{"seq":1}`,
		`{"seq":2}`,
		`{"seq":3}`,
	}
	for _, f := range frames {
		tr.Push(f)
	}

	for i, want := range frames {
		got := awaitMessage(t, msgs)
		if string(got) != want {
			t.Errorf("frame %d = %s, want %s", i, got, want)
		}
	}
}

func TestChannel_StatePrecedesMessages(t *testing.T) {
	tr := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr})
	mgr := newTestManager(dialer, newFakeClock())

	ch, _ := mgr.Channel(NewDescriptor("orders", "/ws/orders"))

	states := ch.SubscribeStates()
	defer states.Cancel()
	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	tr.Push(`{"hello":true}`)
	awaitMessage(t, msgs)

	// Both transitions must already be queued: connected is emitted
	// strictly before any frame is broadcast.
	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)
}

func TestChannel_DropsMalformedFrame(t *testing.T) {
	tr := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr})
	mgr := newTestManager(dialer, newFakeClock())

	ch, _ := mgr.Channel(NewDescriptor("orders", "/ws/orders"))

	states := ch.SubscribeStates()
	defer states.Cancel()
	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)

	tr.Push(`{"good":1}`)
	tr.Push(`{not json at all`)
	tr.Push(`{"good":2}`)

	if got := string(awaitMessage(t, msgs)); got != `{"good":1}` {
		t.Errorf("first frame = %s", got)
	}
	if got := string(awaitMessage(t, msgs)); got != `{"good":2}` {
		t.Errorf("frame after malformed = %s, want the next valid frame", got)
	}

	if st := ch.State(); st != StateConnected {
		t.Errorf("state after malformed frame = %q, want %q", st, StateConnected)
	}
}

func TestChannel_ReconnectUnbounded(t *testing.T) {
	tr := newFakeTransport()
	dialer := newFakeDialer(
		dialOutcome{err: errors.New("refused")},
		dialOutcome{err: errors.New("refused")},
		dialOutcome{err: errors.New("refused")},
		dialOutcome{tr: tr},
	)
	clock := newFakeClock()
	mgr := newTestManager(dialer, clock)

	ch, _ := mgr.Channel(NewDescriptor("nodes", "/ws/nodes"))

	states := ch.SubscribeStates()
	defer states.Cancel()

	awaitState(t, states, StateConnecting)
	for i := 0; i < 3; i++ {
		awaitSignal(t, dialer.dialed, "expected dial attempt")
		awaitState(t, states, StateDisconnected)
		awaitSignal(t, clock.waiting, "reconnect loop did not park on retry delay")
		clock.Advance()
		awaitState(t, states, StateConnecting)
	}

	awaitSignal(t, dialer.dialed, "expected final dial attempt")
	awaitState(t, states, StateConnected)

	if n := dialer.dialCount(); n != 4 {
		t.Errorf("dial attempts = %d, want 4 after 3 failures", n)
	}
}

func TestChannel_RetryBudgetZero(t *testing.T) {
	dialer := newFakeDialer(dialOutcome{err: errors.New("refused")})
	clock := newFakeClock()
	mgr := newTestManager(dialer, clock)

	desc := NewDescriptor("nodes", "/ws/nodes")
	desc.RetryAttempts = 0
	ch, _ := mgr.Channel(desc)

	states := ch.SubscribeStates()
	defer states.Cancel()

	awaitState(t, states, StateConnecting)
	awaitSignal(t, dialer.dialed, "expected single dial attempt")
	awaitState(t, states, StateDisconnected)

	awaitSignal(t, ch.Done(), "Done not closed after budget exhaustion")

	// Past the retry delay, no second attempt may occur.
	clock.Advance()
	time.Sleep(50 * time.Millisecond)
	if n := dialer.dialCount(); n != 1 {
		t.Errorf("dial attempts = %d, want 1", n)
	}
	if st := ch.State(); st != StateDisconnected {
		t.Errorf("state = %q, want permanent %q", st, StateDisconnected)
	}
}

func TestChannel_FiniteRetryStops(t *testing.T) {
	dialer := newFakeDialer()
	clock := newFakeClock()
	mgr := newTestManager(dialer, clock)

	desc := NewDescriptor("nodes", "/ws/nodes")
	desc.RetryAttempts = 2
	ch, _ := mgr.Channel(desc)

	states := ch.SubscribeStates()
	defer states.Cancel()

	// Initial attempt plus two retries, all failing.
	awaitSignal(t, dialer.dialed, "expected initial dial")
	for i := 0; i < 2; i++ {
		awaitSignal(t, clock.waiting, "reconnect loop did not park")
		clock.Advance()
		awaitSignal(t, dialer.dialed, "expected retry dial")
	}

	awaitSignal(t, ch.Done(), "Done not closed after final retry failed")

	clock.Advance()
	time.Sleep(50 * time.Millisecond)
	if n := dialer.dialCount(); n != 3 {
		t.Errorf("dial attempts = %d, want 3 (initial + 2 retries)", n)
	}
}

func TestChannel_AbruptCloseSchedulesRetry(t *testing.T) {
	tr1 := newFakeTransport()
	tr2 := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr1}, dialOutcome{tr: tr2})
	clock := newFakeClock()
	mgr := newTestManager(dialer, clock)

	desc := Descriptor{
		Name:          "orders-stream",
		Path:          "/ws/orders",
		RetryAttempts: RetryUnbounded,
		RetryDelay:    time.Second,
	}
	ch, err := mgr.Channel(desc)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}

	states := ch.SubscribeStates()
	defer states.Cancel()
	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)

	tr1.Push(`{"orders":[{"order_id":"ORD-1","instrument":"BTC-USD","status":"open"}]}`)

	var payload struct {
		Orders []struct {
			OrderID string `json:"order_id"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(awaitMessage(t, msgs), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Orders) != 1 || payload.Orders[0].OrderID != "ORD-1" {
		t.Fatalf("payload = %+v, want one order ORD-1", payload)
	}

	tr1.Fail()

	awaitState(t, states, StateDisconnected)
	awaitSignal(t, clock.waiting, "no retry scheduled after abrupt close")
	clock.Advance()
	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)

	// The new lineage keeps delivering.
	tr2.Push(`{"orders":[]}`)
	awaitMessage(t, msgs)
}

func TestChannel_TeardownClosesTransport(t *testing.T) {
	tr := newFakeTransport()
	tr2 := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr}, dialOutcome{tr: tr2})
	mgr := newTestManager(dialer, newFakeClock())

	ch, _ := mgr.Channel(NewDescriptor("orders", "/ws/orders"))

	states := ch.SubscribeStates()
	msgs := ch.SubscribeMessages()

	awaitState(t, states, StateConnecting)
	awaitState(t, states, StateConnected)

	// Cancelling one of two subscriptions must not close the transport.
	states.Cancel()
	select {
	case <-tr.closed:
		t.Fatal("transport closed while a subscriber remained")
	case <-time.After(50 * time.Millisecond):
	}

	// Last subscriber out: transport closes.
	msgs.Cancel()
	awaitSignal(t, tr.closed, "transport not closed after last unsubscribe")

	// A fresh subscription starts a new lineage with a new connection.
	again := ch.SubscribeMessages()
	defer again.Cancel()
	awaitSignal(t, dialer.dialed, "no dial for resubscribed channel")
	awaitSignal(t, dialer.dialed, "no second dial for fresh lineage")
	if n := dialer.dialCount(); n != 2 {
		t.Errorf("dial attempts = %d, want 2", n)
	}
}

func TestChannel_LateStateSubscriberSeeded(t *testing.T) {
	tr := newFakeTransport()
	dialer := newFakeDialer(dialOutcome{tr: tr})
	mgr := newTestManager(dialer, newFakeClock())

	ch, _ := mgr.Channel(NewDescriptor("orders", "/ws/orders"))

	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	deadline := time.Now().Add(2 * time.Second)
	for ch.State() != StateConnected {
		if time.Now().After(deadline) {
			t.Fatal("channel never connected")
		}
		time.Sleep(5 * time.Millisecond)
	}

	late := ch.SubscribeStates()
	defer late.Cancel()
	awaitState(t, late, StateConnected)
}
