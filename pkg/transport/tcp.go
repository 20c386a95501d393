package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikewren/PocketMesh-sub009/pkg/log"
)

// TCPConfig configures a TCP bridge transport (spec §4.6: a plain,
// unencrypted length-prefixed TCP bridge, typically to a local serial-
// to-WiFi companion device, not a routed network service).
type TCPConfig struct {
	// Address is the host:port of the TCP bridge.
	Address string

	// MaxMessageSize caps the length-prefixed frame size (default 64KB).
	MaxMessageSize uint32

	// DialTimeout bounds the initial connect (default 10s).
	DialTimeout time.Duration

	// Logger receives protocol-log events, if set.
	Logger log.Logger
}

// TCPTransport is a Transport implementation over a length-prefixed TCP
// socket to a MeshCore TCP bridge.
type TCPTransport struct {
	cfg    TCPConfig
	connID string

	sm *stateMachine

	mu     sync.Mutex
	conn   net.Conn
	framer *Framer

	frames chan []byte

	closeOnce sync.Once
}

// NewTCPTransport creates a TCP transport. Call Connect to establish the
// link.
func NewTCPTransport(cfg TCPConfig) *TCPTransport {
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &TCPTransport{
		cfg:    cfg,
		connID: uuid.New().String(),
		sm:     newStateMachine(),
		frames: make(chan []byte, 32),
	}
}

// Connect dials the TCP bridge and transitions through the discovery
// states to Ready. For TCP there is no GATT service/characteristic
// discovery, but the state machine still passes through each stage so
// callers observing ConnectionState() see a uniform sequence across
// both transports.
func (t *TCPTransport) Connect(ctx context.Context) error {
	t.sm.transition(StateDiscoveringServices)

	dialer := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.cfg.Address)
	if err != nil {
		t.sm.transition(StateIdle)
		return fmt.Errorf("dial %s: %w", t.cfg.Address, err)
	}

	t.sm.transition(StateDiscoveringCharacteristics)
	t.sm.transition(StateSubscribingToNotifications)

	framer := NewFramerWithMaxSize(conn, t.cfg.MaxMessageSize)
	if t.cfg.Logger != nil {
		framer.SetLogger(t.cfg.Logger, t.connID)
	}

	t.mu.Lock()
	t.conn = conn
	t.framer = framer
	t.mu.Unlock()

	go t.readLoop()

	t.sm.transition(StateReady)
	return nil
}

func (t *TCPTransport) readLoop() {
	for {
		t.mu.Lock()
		framer := t.framer
		t.mu.Unlock()
		if framer == nil {
			return
		}

		frame, err := framer.ReadFrame()
		if err != nil {
			if t.sm.current() == StateDisconnecting {
				return
			}
			t.sm.transition(StateAutoReconnecting)
			return
		}

		select {
		case t.frames <- frame:
		default:
			// Slow consumer: drop oldest to keep the transport live.
			select {
			case <-t.frames:
			default:
			}
			t.frames <- frame
		}
	}
}

// Send implements Transport.
func (t *TCPTransport) Send(ctx context.Context, frame []byte) error {
	if t.sm.current() != StateReady {
		return ErrTransportClosed
	}

	t.mu.Lock()
	framer := t.framer
	t.mu.Unlock()
	if framer == nil {
		return ErrTransportClosed
	}

	return framer.WriteFrame(frame)
}

// ReceivedFrames implements Transport.
func (t *TCPTransport) ReceivedFrames() <-chan []byte {
	return t.frames
}

// ConnectionState implements Transport.
func (t *TCPTransport) ConnectionState() <-chan ConnState {
	return t.sm.subscribe()
}

// State implements Transport.
func (t *TCPTransport) State() ConnState {
	return t.sm.current()
}

// Close implements Transport.
func (t *TCPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.sm.transition(StateDisconnecting)

		t.mu.Lock()
		conn := t.conn
		t.conn = nil
		t.framer = nil
		t.mu.Unlock()

		if conn != nil {
			err = conn.Close()
		}
		// frames is deliberately not closed here: readLoop may still be
		// mid-send when Close runs, and closing would race a send on a
		// closed channel. readLoop returns on its own once ReadFrame
		// fails after the socket closes.
		t.sm.shutdown()
	})
	return err
}
