// Package lpp implements a Cayenne Low-Power-Payload encoder/decoder for
// the telemetry channels MeshCore nodes report over TELEMETRY_RESPONSE.
//
// Each record is channel(u8) · type(u8) · value, with value width and
// scaling fixed per type per the Cayenne LPP / IPSO registry. Decoding is
// resilient: Decode stops at the first unknown type or truncated record
// and returns whatever records it decoded so far, rather than failing the
// whole payload.
package lpp
