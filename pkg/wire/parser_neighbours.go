package wire

import "github.com/mikewren/PocketMesh-sub009/pkg/binio"

// ParseNeighboursResponse decodes a NEIGHBOURS_RESPONSE payload:
// total(u16 LE) · results(u16 LE) · repeat(results) { prefix[prefixLen] ·
// secsAgo(u32 LE) · snr(i8) }. prefixLen must be 4 or 6 and must match the
// width the caller requested via GetNeighbours — the response itself
// doesn't self-describe it. Short payloads yield an empty, non-failure
// response.
func ParseNeighboursResponse(payload []byte, prefixLen int) *MeshEvent {
	if prefixLen != 4 && prefixLen != 6 {
		return parseFailure("neighbours: prefixLen must be 4 or 6")
	}
	if len(payload) < 4 {
		return &MeshEvent{Kind: EventNeighboursResponse, Neighbours: nil}
	}
	results := int(binio.ReadUint16LE(payload, 2))
	entryLen := prefixLen + 4 + 1
	out := make([]Neighbour, 0, results)
	off := 4
	for i := 0; i < results; i++ {
		if off+entryLen > len(payload) {
			break
		}
		n := Neighbour{PrefixLen: prefixLen}
		copy(n.Prefix[:prefixLen], payload[off:off+prefixLen])
		n.SecsAgo = binio.ReadUint32LE(payload, off+prefixLen)
		n.SNR = float64(int8(payload[off+prefixLen+4])) / 4.0
		out = append(out, n)
		off += entryLen
	}
	return &MeshEvent{Kind: EventNeighboursResponse, Neighbours: out}
}
