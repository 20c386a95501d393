package reactions

import (
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/blake2s"
)

// crockfordAlphabet is Douglas Crockford's base32 alphabet: digits and
// uppercase letters with I, L, O, U removed to avoid confusion with
// 1, 1, 0, V.
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// hashBytes is the number of leading hash bytes encoded into the header;
// 5 bytes (40 bits) encode exactly into 8 Crockford characters with no
// padding bit waste.
const hashBytes = 5

// HashMessage computes the reaction target hash over
// senderPrefix || messageTimestamp || messageText, returning it as an
// 8-character Crockford-base32 string.
func HashMessage(senderPrefix []byte, messageTimestamp uint32, messageText string) string {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic("reactions: blake2s.New256 with nil key never fails: " + err.Error())
	}
	h.Write(senderPrefix)
	var ts [4]byte
	binary.LittleEndian.PutUint32(ts[:], messageTimestamp)
	h.Write(ts[:])
	h.Write([]byte(messageText))
	sum := h.Sum(nil)
	return encodeCrockford(sum[:hashBytes])
}

// encodeCrockford encodes b (expected to be a multiple of 5 bits once
// packed) using Crockford's base32 alphabet, 5 bits per output character.
func encodeCrockford(b []byte) string {
	var sb strings.Builder
	var bitBuf uint64
	var bitCount uint
	for _, by := range b {
		bitBuf = (bitBuf << 8) | uint64(by)
		bitCount += 8
		for bitCount >= 5 {
			bitCount -= 5
			idx := (bitBuf >> bitCount) & 0x1F
			sb.WriteByte(crockfordAlphabet[idx])
		}
	}
	if bitCount > 0 {
		idx := (bitBuf << (5 - bitCount)) & 0x1F
		sb.WriteByte(crockfordAlphabet[idx])
	}
	return sb.String()
}

// Build encodes a reaction frame: the message hash header immediately
// followed by the emoji, with no separator (the hash has a fixed width so
// the boundary is unambiguous).
func Build(messageHash, emoji string) string {
	return messageHash + emoji
}

// Reaction is a parsed incoming reaction, keyed for deduplication by
// (MessageID, SenderName, Emoji) at the caller's discretion — this
// package only extracts the wire fields.
type Reaction struct {
	MessageHash string
	Emoji       string
	SenderName  string
}

// hashLen is the fixed width of the Crockford-encoded hash header.
const hashLen = 8

// Parse splits a reaction body into its message hash and emoji. senderName
// is supplied by the caller (it travels alongside the reaction in the
// enclosing ContactMessage/ChannelMessage envelope, not in this string).
// ok is false if raw is shorter than the fixed hash header.
func Parse(raw, senderName string) (Reaction, bool) {
	if len(raw) < hashLen {
		return Reaction{}, false
	}
	return Reaction{
		MessageHash: raw[:hashLen],
		Emoji:       raw[hashLen:],
		SenderName:  senderName,
	}, true
}

// DedupKey returns the tuple used to suppress duplicate reaction delivery:
// the same sender reacting with the same emoji to the same message is
// one logical reaction no matter how many times the frame is retried.
func DedupKey(messageID, senderName, emoji string) string {
	return messageID + "\x00" + senderName + "\x00" + emoji
}
