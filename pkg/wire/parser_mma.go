package wire

import "github.com/mikewren/PocketMesh-sub009/pkg/binio"

const (
	mmaTypeTemperature = 0x67
	mmaTypeHumidity    = 0x68
)

// ParseMMAResponse decodes repeating channel(1)·type(1)·value… entries,
// where the value's width and scaling depend on type. Because an unknown
// type carries no declared width, decoding stops at the first unknown or
// truncated entry and returns whatever was decoded so far, same as the
// LPP codec's resilience rule.
func ParseMMAResponse(payload []byte) *MeshEvent {
	var out []MMAEntry
	off := 0
	for off+2 <= len(payload) {
		channel := payload[off]
		typ := payload[off+1]
		rest := payload[off+2:]

		switch typ {
		case mmaTypeTemperature:
			if len(rest) < 6 {
				return &MeshEvent{Kind: EventMMAResponse, MMAEntries: out}
			}
			out = append(out, MMAEntry{
				Channel: channel,
				Type:    typ,
				Min:     float64(binio.ReadInt16BE(rest, 0)) / 10.0,
				Max:     float64(binio.ReadInt16BE(rest, 2)) / 10.0,
				Avg:     float64(binio.ReadInt16BE(rest, 4)) / 10.0,
			})
			off += 2 + 6
		case mmaTypeHumidity:
			if len(rest) < 3 {
				return &MeshEvent{Kind: EventMMAResponse, MMAEntries: out}
			}
			out = append(out, MMAEntry{
				Channel: channel,
				Type:    typ,
				Min:     float64(rest[0]) * 0.5,
				Max:     float64(rest[1]) * 0.5,
				Avg:     float64(rest[2]) * 0.5,
			})
			off += 2 + 3
		default:
			return &MeshEvent{Kind: EventMMAResponse, MMAEntries: out}
		}
	}
	return &MeshEvent{Kind: EventMMAResponse, MMAEntries: out}
}
