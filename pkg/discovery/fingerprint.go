package discovery

import "encoding/hex"

// PubkeyPrefixHex encodes a node's public key prefix (the same 6 leading
// bytes used to address contacts and correlate remote-node pushes
// throughout the wire protocol) as the hex string carried in TXT records.
func PubkeyPrefixHex(pubkeyPrefix [6]byte) string {
	return hex.EncodeToString(pubkeyPrefix[:])
}

// ParsePubkeyPrefixHex decodes a hex-encoded pubkey prefix back into its
// raw 6 bytes.
func ParsePubkeyPrefixHex(s string) ([6]byte, error) {
	var out [6]byte
	if len(s) != PubkeyPrefixLen || !isHexString(s) {
		return out, ErrInvalidPubkeyPrefix
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, ErrInvalidPubkeyPrefix
	}
	copy(out[:], b)
	return out, nil
}
