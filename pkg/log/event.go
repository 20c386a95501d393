package log

import (
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the transport connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (IP:port, for the TCP transport).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// DeviceID identifies the companion radio this connection talks to,
	// once known (populated after a successful appStart handshake).
	DeviceID string `cbor:"8,keyasint,omitempty"`

	// ChannelIndex is set when the event concerns one specific channel
	// slot rather than the session as a whole.
	ChannelIndex *uint8 `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Session layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/session state
	ControlMsg  *ControlMsgEvent  `cbor:"13,keyasint,omitempty"` // Ping/pong/close
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming frame (radio to application).
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing frame (application to radio).
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes, BLE notifications or
	// TCP length-prefixed frames).
	LayerTransport Layer = 0
	// LayerWire is the command/response decoding layer.
	LayerWire Layer = 1
	// LayerSession is the request/response correlation and push-broadcast
	// layer.
	LayerSession Layer = 2
	// LayerService is an upper-level service: messaging, sync, remote
	// node, or polling.
	LayerService Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol frame (command/response/push).
	CategoryMessage Category = 0
	// CategoryControl indicates a transport control event (ping/pong/close).
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded command/response/push frame at the wire
// or session layer.
type MessageEvent struct {
	// Type distinguishes command / response / push.
	Type MessageType `cbor:"1,keyasint"`

	// Command identifies the outgoing command code (commands only).
	Command *wire.Command `cbor:"2,keyasint,omitempty"`

	// ResponseCode identifies the incoming response/push code
	// (responses and pushes only).
	ResponseCode *wire.ResponseCode `cbor:"3,keyasint,omitempty"`

	// EventKind is the decoded MeshEvent's discriminant, once parsed.
	EventKind *wire.EventKind `cbor:"4,keyasint,omitempty"`

	// ProcessingTime is the duration from request send to response
	// receipt (responses only). Stored as nanoseconds.
	ProcessingTime *time.Duration `cbor:"9,keyasint,omitempty"`
}

// MessageType distinguishes command/response/push frames.
type MessageType uint8

const (
	// MessageTypeCommand indicates an outgoing command frame.
	MessageTypeCommand MessageType = 0
	// MessageTypeResponse indicates an incoming response to a pending
	// request.
	MessageTypeResponse MessageType = 1
	// MessageTypePush indicates an unsolicited incoming push frame.
	MessageTypePush MessageType = 2
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeCommand:
		return "COMMAND"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypePush:
		return "PUSH"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a transport connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a MeshCoreSession state change.
	StateEntitySession StateEntity = 1
	// StateEntitySync indicates a SyncCoordinator phase change.
	StateEntitySync StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	case StateEntitySync:
		return "SYNC"
	default:
		return "UNKNOWN"
	}
}

// ControlMsgEvent captures transport-level control messages.
type ControlMsgEvent struct {
	// Type of control message.
	Type ControlMsgType `cbor:"1,keyasint"`

	// CloseReason is the reason code for close messages.
	CloseReason *uint8 `cbor:"2,keyasint,omitempty"`
}

// ControlMsgType indicates the type of control message.
type ControlMsgType uint8

const (
	// ControlMsgPing indicates a keepalive ping.
	ControlMsgPing ControlMsgType = 0
	// ControlMsgPong indicates a keepalive pong.
	ControlMsgPong ControlMsgType = 1
	// ControlMsgClose indicates a graceful close.
	ControlMsgClose ControlMsgType = 2
)

// String returns the control message type name.
func (c ControlMsgType) String() string {
	switch c {
	case ControlMsgPing:
		return "PING"
	case ControlMsgPong:
		return "PONG"
	case ControlMsgClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the device error code (if applicable; see wire.ErrorCode).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
