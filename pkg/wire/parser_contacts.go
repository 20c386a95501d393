package wire

import (
	"strings"

	"github.com/mikewren/PocketMesh-sub009/pkg/binio"
)

// contactFrameLen is the fixed 147-byte layout: publicKey[32] · type(1) ·
// flags(1) · outPathLength(1) · outPath[64] · name[32] · lastAdvert(4) ·
// lat(4) · lon(4) · lastMod(4).
const contactFrameLen = 32 + 1 + 1 + 1 + 64 + 32 + 4 + 4 + 4 + 4

func decodeContactFrame(payload []byte) (*ContactFrame, *MeshEvent) {
	if len(payload) < contactFrameLen {
		return nil, tooShort(RespContact, len(payload), contactFrameLen)
	}
	c := &ContactFrame{}
	copy(c.PublicKey[:], payload[0:32])
	c.Type = payload[32]
	c.Flags = payload[33]
	c.OutPathLength = int8(payload[34])
	copy(c.OutPath[:], payload[35:99])
	c.Name = binio.NulTerminatedLossyString(payload[99:131])
	c.LastAdvert = binio.ReadUint32LE(payload, 131)
	c.LatMicroDeg = binio.ReadInt32LE(payload, 135)
	c.LonMicroDeg = binio.ReadInt32LE(payload, 139)
	c.LastMod = binio.ReadUint32LE(payload, 143)
	return c, nil
}

func parseContact(payload []byte) *MeshEvent {
	c, fail := decodeContactFrame(payload)
	if fail != nil {
		return fail
	}
	return &MeshEvent{Kind: EventContact, Contact: c}
}

func parseNewAdvert(payload []byte) *MeshEvent {
	c, fail := decodeContactFrame(payload)
	if fail != nil {
		return fail
	}
	return &MeshEvent{Kind: EventNewAdvert, NewAdvert: c}
}

// selfInfoMinLen covers advertType, txPower, maxTxPower, publicKey[32],
// lat(4), lon(4), flag bytes, telemetry-mode byte, radio freq(4),
// bandwidth(4), sf(1), cr(1) — the node name is whatever remains.
const selfInfoMinLen = 1 + 1 + 1 + 32 + 4 + 4 + 1 + 1 + 1 + 4 + 4 + 1 + 1

func parseSelfInfo(payload []byte) *MeshEvent {
	if len(payload) < selfInfoMinLen {
		return tooShort(RespSelfInfo, len(payload), selfInfoMinLen)
	}
	info := &SelfInfo{}
	off := 0
	info.AdvertType = payload[off]
	off++
	info.TxPower = int8(payload[off])
	off++
	info.MaxTxPower = int8(payload[off])
	off++
	copy(info.PublicKey[:], payload[off:off+32])
	off += 32
	info.LatMicroDeg = binio.ReadInt32LE(payload, off)
	off += 4
	info.LonMicroDeg = binio.ReadInt32LE(payload, off)
	off += 4
	flags := payload[off]
	off++
	info.MultiAck = flags&0x01 != 0
	info.AdvLocationPolicy = payload[off]
	off++
	telemetryMode := payload[off]
	off++
	info.TelemetryModeBase = telemetryMode & 0x03
	info.TelemetryModeLoc = (telemetryMode >> 2) & 0x03
	info.TelemetryModeEnv = (telemetryMode >> 4) & 0x03
	info.ManualAddContacts = flags&0x02 != 0
	info.RadioFreqMHz = float64(binio.ReadUint32LE(payload, off)) / 1000.0
	off += 4
	info.RadioBandwidthKHz = float64(binio.ReadUint32LE(payload, off)) / 1000.0
	off += 4
	info.SpreadingFactor = payload[off]
	off++
	info.CodingRate = payload[off]
	off++
	info.NodeName = binio.NulTerminatedLossyString(payload[off:])
	return &MeshEvent{Kind: EventSelfInfo, SelfInfo: info}
}

// snrSentinel is the wire value meaning "no SNR available".
const snrSentinel = -128

func decodeSNR(raw int8) *float64 {
	if raw == snrSentinel {
		return nil
	}
	v := float64(raw) / 4.0
	return &v
}

// contactMessageMinLen: snr(1) · reserved(2) · senderPrefix[6] ·
// pathLen(1) · textType(1) · ts(4).
const contactMessageMinLen = 1 + 2 + 6 + 1 + 1 + 4

func parseContactMessage(payload []byte) *MeshEvent {
	if len(payload) < contactMessageMinLen {
		return tooShort(RespContactMsgRecv, len(payload), contactMessageMinLen)
	}
	m := &ContactMessage{}
	m.SNR = decodeSNR(int8(payload[0]))
	copy(m.SenderPrefix[:], payload[3:9])
	m.PathLen = payload[9]
	m.TextType = payload[10]
	m.Timestamp = binio.ReadUint32LE(payload, 11)
	m.Text = lossyRemainder(payload[15:])
	return &MeshEvent{Kind: EventContactMessageReceived, ContactMessage: m}
}

// channelMessageMinLen: snr(1) · reserved(2) · channel(1) · pathLen(1) ·
// textType(1) · ts(4).
const channelMessageMinLen = 1 + 2 + 1 + 1 + 1 + 4

func parseChannelMessage(payload []byte) *MeshEvent {
	if len(payload) < channelMessageMinLen {
		return tooShort(RespChannelMsgRecv, len(payload), channelMessageMinLen)
	}
	m := &ChannelMessage{}
	m.SNR = decodeSNR(int8(payload[0]))
	m.Channel = payload[3]
	m.PathLen = payload[4]
	m.TextType = payload[5]
	m.Timestamp = binio.ReadUint32LE(payload, 6)
	m.Text = lossyRemainder(payload[10:])
	return &MeshEvent{Kind: EventChannelMessageReceived, ChannelMessage: m}
}

// lossyRemainder decodes the free-text tail of a message frame as lossy
// UTF-8. Unlike NulTerminatedLossyString, message text has no NUL
// terminator: the remaining frame bytes ARE the text.
func lossyRemainder(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		sb.WriteRune(r)
	}
	return sb.String()
}
