// Package session implements the MeshCore companion session layer: a
// single logical writer that serializes command/response RPC over a
// pkg/transport.Transport and fans out unsolicited push frames to
// subscribers.
//
// A Session owns exactly one outstanding request at a time (spec §4.8):
// each RPC goes through the internal request/requestCollecting helpers,
// which acquire a FIFO lock, write the frame, and block until a response
// matching the caller's expected response-code set arrives, the timeout
// elapses, or the context is cancelled. Every inbound event - including
// one that satisfied the pending request, and all push codes
// (wire.ResponseCode.IsPush) - is also delivered to Events().
//
// Start performs the appStart handshake and must complete before any other
// request is sent; the device's SelfInfo reply is cached and available via
// SelfInfo() afterward.
package session
