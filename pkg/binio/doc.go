// Package binio provides the little/big-endian integer primitives and
// UTF-8-safe string truncation rules the MeshCore wire format depends on.
//
// Every reader here is fail-safe: an out-of-range offset returns the zero
// value instead of panicking. Callers are expected to validate the overall
// payload length before slicing into individual fields (see pkg/wire),
// exactly as the teacher's framing layer validates frame length before
// handing payloads to its decoder.
package binio
