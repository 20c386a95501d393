// Package transport implements the MeshCore companion transport contract
// and its two concrete bindings: a BLE GATT link to the radio and a
// length-prefixed TCP bridge.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   MeshCore frames (pkg/wire)    │
//	├────────────────────────────────┤
//	│  Length-Prefix Framing (4B)    │   TCP only; BLE notifications are
//	│       (TCP transport)          │   already frame-bounded.
//	├────────────────────────────────┤
//	│      TCP            BLE GATT    │
//	└────────────────────────────────┘
//
// Both bindings satisfy the same Transport interface (spec §4.6): send a
// frame, consume a restartable stream of received frames, observe
// connection state. Neither binding uses TLS — the companion link is a
// local BLE pairing or a LAN-local TCP bridge, not a routed network
// service.
//
// # Connection lifecycle
//
// Both transports drive the same state machine (see state.go):
//
//	idle -> discoveringServices -> discoveringCharacteristics ->
//	subscribingToNotifications -> ready -> (disconnecting | autoReconnecting) -> idle
//
// autoReconnecting is entered only from ready on an unexpected disconnect.
// Neither binding redials on its own: the transport stays in
// autoReconnecting until Close. Backoff computes exponential, jittered
// delays, but nothing in this package uses it to reconnect.
package transport
