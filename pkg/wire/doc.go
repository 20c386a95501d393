// Package wire implements the MeshCore companion radio wire protocol:
// bit-exact builders for outgoing command frames and fail-safe parsers for
// incoming response/push frames.
//
// Every outgoing frame is a byte slice beginning with a one-byte command
// code (§4.2 of the companion spec). Every incoming frame begins with a
// one-byte response code, or the distinguished push marker; Parse decodes
// it into a MeshEvent, the tagged union consumed by pkg/session.
//
// Builders are pure, stateless functions: given the same arguments they
// always produce the same bytes, verified against literal reference byte
// vectors in builder_test.go. Parsers never read out of bounds — a
// payload shorter than a response's declared minimum yields a
// MeshEvent with Kind EventParseFailure rather than a panic or garbage
// read.
package wire
