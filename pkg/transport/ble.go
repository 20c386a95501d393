package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikewren/PocketMesh-sub009/pkg/log"
)

// DefaultWritePacing is the minimum delay between consecutive BLE writes
// (spec §4.6: "a configurable minimum inter-write delay (default short,
// e.g. 20-40 ms) to avoid overrunning peripherals with small MTUs").
const DefaultWritePacing = 30 * time.Millisecond

// Peripheral abstracts the underlying BLE GATT stack. Applications
// supply a concrete implementation backed by whatever platform BLE
// library is appropriate for their target (this package names no GATT
// library itself, since the right one is platform-specific).
type Peripheral interface {
	// Connect performs service/characteristic discovery and notification
	// subscription for the MeshCore characteristic, returning once ready.
	Connect(ctx context.Context) error

	// WriteCharacteristic writes one frame to the MeshCore write
	// characteristic. The underlying characteristic notification IS a
	// frame: callers must not split or coalesce frames here.
	WriteCharacteristic(ctx context.Context, data []byte) error

	// Notifications returns a channel of raw notification payloads, one
	// per notification. Closed when the peripheral disconnects.
	Notifications() <-chan []byte

	// Disconnect tears down the GATT connection.
	Disconnect() error

	// DeviceID returns a stable identifier for the paired device, once
	// known (empty before Connect succeeds).
	DeviceID() string
}

// BLEConfig configures a BLE transport.
type BLEConfig struct {
	// WritePacing is the minimum delay between consecutive writes.
	// Zero uses DefaultWritePacing.
	WritePacing time.Duration

	// Logger receives protocol-log events, if set.
	Logger log.Logger
}

// BLETransport is a Transport implementation over a BLE GATT Peripheral.
// The notification-is-frame rule means no framing layer is needed here;
// this package only adds write pacing and state tracking on top of the
// caller's Peripheral. An unexpected disconnect moves the state to
// autoReconnecting; the transport does not redial.
type BLETransport struct {
	peripheral Peripheral
	cfg        BLEConfig
	connID     string

	sm *stateMachine

	writeMu      sync.Mutex
	lastWriteAt  time.Time
	frames       chan []byte
	relayStarted bool
	relayMu      sync.Mutex

	closeOnce sync.Once
}

// NewBLETransport wraps an already-constructed Peripheral.
func NewBLETransport(peripheral Peripheral, cfg BLEConfig) *BLETransport {
	if cfg.WritePacing == 0 {
		cfg.WritePacing = DefaultWritePacing
	}
	return &BLETransport{
		peripheral: peripheral,
		cfg:        cfg,
		connID:     uuid.New().String(),
		sm:         newStateMachine(),
		frames:     make(chan []byte, 32),
	}
}

// Connect drives the peripheral through discovery/subscription and
// relays its notifications as frames.
func (t *BLETransport) Connect(ctx context.Context) error {
	t.sm.transition(StateDiscoveringServices)
	t.sm.transition(StateDiscoveringCharacteristics)
	t.sm.transition(StateSubscribingToNotifications)

	if err := t.peripheral.Connect(ctx); err != nil {
		t.sm.transition(StateIdle)
		return fmt.Errorf("ble connect: %w", err)
	}

	t.relayMu.Lock()
	if !t.relayStarted {
		t.relayStarted = true
		go t.relayNotifications()
	}
	t.relayMu.Unlock()

	t.sm.transition(StateReady)
	return nil
}

func (t *BLETransport) relayNotifications() {
	for frame := range t.peripheral.Notifications() {
		if frame == nil {
			continue
		}
		select {
		case t.frames <- frame:
		default:
			select {
			case <-t.frames:
			default:
			}
			t.frames <- frame
		}
	}
	if t.sm.current() != StateDisconnecting {
		t.sm.transition(StateAutoReconnecting)
	}
}

// Send implements Transport, pacing consecutive writes per
// DefaultWritePacing / BLEConfig.WritePacing.
func (t *BLETransport) Send(ctx context.Context, frame []byte) error {
	if t.sm.current() != StateReady {
		return ErrTransportClosed
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if since := time.Since(t.lastWriteAt); since < t.cfg.WritePacing {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.WritePacing - since):
		}
	}

	err := t.peripheral.WriteCharacteristic(ctx, frame)
	t.lastWriteAt = time.Now()

	if err == nil && t.cfg.Logger != nil {
		t.cfg.Logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: t.connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerTransport,
			Category:     log.CategoryMessage,
			DeviceID:     t.peripheral.DeviceID(),
			Frame:        &log.FrameEvent{Size: len(frame), Data: frame},
		})
	}
	return err
}

// ReceivedFrames implements Transport.
func (t *BLETransport) ReceivedFrames() <-chan []byte {
	return t.frames
}

// ConnectionState implements Transport.
func (t *BLETransport) ConnectionState() <-chan ConnState {
	return t.sm.subscribe()
}

// State implements Transport.
func (t *BLETransport) State() ConnState {
	return t.sm.current()
}

// Close implements Transport.
func (t *BLETransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.sm.transition(StateDisconnecting)
		err = t.peripheral.Disconnect()
		// frames is deliberately not closed here: relayNotifications
		// is still draining peripheral.Notifications() and would panic
		// on a send to a closed channel. It exits on its own once the
		// peripheral closes its notification channel.
		t.sm.shutdown()
	})
	return err
}
