package binio

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// ReadUint16LE reads a little-endian uint16 at offset. Returns 0 if the
// payload is too short.
func ReadUint16LE(b []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

// ReadInt16LE reads a little-endian int16 at offset. Returns 0 if the
// payload is too short.
func ReadInt16LE(b []byte, offset int) int16 {
	return int16(ReadUint16LE(b, offset))
}

// ReadUint32LE reads a little-endian uint32 at offset. Returns 0 if the
// payload is too short.
func ReadUint32LE(b []byte, offset int) uint32 {
	if offset < 0 || offset+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

// ReadInt32LE reads a little-endian int32 at offset. Returns 0 if the
// payload is too short.
func ReadInt32LE(b []byte, offset int) int32 {
	return int32(ReadUint32LE(b, offset))
}

// ReadUint16BE reads a big-endian uint16 at offset. Used by the LPP codec.
// Returns 0 if the payload is too short.
func ReadUint16BE(b []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint16(b[offset : offset+2])
}

// ReadInt16BE reads a big-endian int16 at offset. Returns 0 if the payload
// is too short.
func ReadInt16BE(b []byte, offset int) int16 {
	return int16(ReadUint16BE(b, offset))
}

// AppendUint16LE appends a little-endian uint16 to b.
func AppendUint16LE(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

// AppendUint32LE appends a little-endian uint32 to b.
func AppendUint32LE(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// AppendInt32LE appends a little-endian int32 to b.
func AppendInt32LE(b []byte, v int32) []byte {
	return AppendUint32LE(b, uint32(v))
}

// EncodeHex returns the lowercase hex encoding of b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes a hex string, returning nil on malformed input.
func DecodeHex(s string) []byte {
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return out
}

// UTF8Prefix returns the longest prefix of s whose UTF-8 byte length is at
// most n, never splitting a multi-byte rune. n may be larger than len(s),
// in which case s is returned unchanged.
func UTF8Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	// Walk rune boundaries and stop at the last one that still fits.
	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > n {
			break
		}
		cut += size
	}
	return s[:cut]
}

// UTF8PaddedOrTruncated UTF-8-safe truncates s to at most n bytes, then
// right-pads with zero bytes until the result is exactly n bytes long.
func UTF8PaddedOrTruncated(s string, n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	prefix := UTF8Prefix(s, n)
	out := make([]byte, n)
	copy(out, prefix)
	return out
}

// NulTerminatedLossyString decodes the bytes up to (but excluding) the
// first NUL byte in b as lossy UTF-8 (invalid sequences become U+FFFD).
// Bytes after the NUL — or the whole slice if no NUL is present — are
// ignored, matching firmware's habit of leaving uninitialised memory past
// a C string's terminator.
func NulTerminatedLossyString(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return lossyUTF8(b[:end])
}

// lossyUTF8 decodes b rune-by-rune, substituting U+FFFD for any invalid
// byte sequence, so a corrupted name still produces a non-empty,
// displayable string instead of an error or raw invalid bytes.
func lossyUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		sb.WriteRune(r)
	}
	return sb.String()
}
