// Package realtime implements the Realtime Channel Manager.
//
// A Channel maintains one transport connection to a named feed endpoint:
//   - Lazily connects on first subscription; tears down when the last
//     subscriber cancels (explicit reference counting).
//   - Republishes JSON frames to message subscribers in receive order.
//   - Reports connecting/connected/disconnected through state subscribers.
//   - Reconnects after failure with a fixed delay, bounded or unbounded
//     by the descriptor's retry budget.
//
// Transport and timing are injected (Dialer, Clock), so the reconnect
// machinery is deterministic under test.
package realtime
