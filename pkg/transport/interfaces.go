package transport

import (
	"context"
	"errors"
)

// ErrTransportClosed is returned by Send when the transport is not ready
// to accept writes (spec §4.6: "fails with transportClosed if not ready").
var ErrTransportClosed = errors.New("transport: not ready")

// Transport is the contract the session layer consumes (spec §4.6). Both
// the BLE and TCP bindings implement it identically from the session's
// point of view.
type Transport interface {
	// Send writes one fully-formed frame. Returns ErrTransportClosed if
	// the transport isn't in the Ready state.
	Send(ctx context.Context, frame []byte) error

	// ReceivedFrames returns a channel of fully-reassembled inbound
	// frames. Neither binding ever closes this channel, not even on
	// Close, so a range over it does not end when the transport is torn
	// down.
	ReceivedFrames() <-chan []byte

	// ConnectionState returns a channel that receives the current state
	// on every transition. The channel replays the current state to new
	// observers is NOT guaranteed; callers that need the current value
	// synchronously should use State().
	ConnectionState() <-chan ConnState

	// State returns the current connection state without blocking.
	State() ConnState

	// Close shuts down the transport: cancels all timers, closes the
	// underlying link, and releases the handle.
	Close() error
}

// Compile-time interface satisfaction checks.
var (
	_ Transport = (*TCPTransport)(nil)
	_ Transport = (*BLETransport)(nil)
)
