package wire

import "github.com/mikewren/PocketMesh-sub009/pkg/binio"

// statusFixedFieldsLen covers battery_mV through floodDups — the portion
// shared verbatim by the push and binary-response forms.
const statusFixedFieldsLen = 2 + 2 + 2 + 2 + 4*8 + 2 + 2 + 2 + 2

// statusPushMinLen is the push form's minimum: a 1-byte reserved field,
// the 6-byte pubkey prefix, the fixed fields, then the mandatory 4-byte
// rxAirtime trailer (spec.md: push form is always >= 59 bytes; rxAirtime
// is only optional in the binary-response form).
const statusPushMinLen = 1 + 6 + statusFixedFieldsLen + 4

// statusBinaryMinLen is the binary-response form's minimum: the fixed
// fields only, since the envelope (not this payload) carries the reserved
// byte and pubkey prefix. rxAirtime is optional here and read only when 4
// extra trailing bytes are present.
const statusBinaryMinLen = statusFixedFieldsLen

// ParseStatusResponsePush decodes the push-delivered StatusResponse form.
// Firmware inserts a reserved byte before the pubkey prefix; early
// implementations skipped it and every subsequent field read one byte
// short. The pubkey prefix must be read from bytes 1..=6, not 0..=5.
func ParseStatusResponsePush(payload []byte) *MeshEvent {
	if len(payload) < statusPushMinLen {
		return tooShort(RespStatusResponse, len(payload), statusPushMinLen)
	}
	sr := &StatusResponse{}
	copy(sr.PubkeyPrefix[:], payload[1:7])
	decodeStatusFixedFields(sr, payload[7:])
	sr.RxAirtime = binio.ReadUint32LE(payload[7:], statusFixedFieldsLen)
	return &MeshEvent{Kind: EventStatusResponse, StatusResponse: sr}
}

// ParseStatusResponseBinary decodes the StatusResponse form delivered as a
// direct binary RPC response, where the pubkey prefix travels in the
// response envelope instead of this payload. Unlike the push form,
// rxAirtime is optional here and only decoded when present.
func ParseStatusResponseBinary(payload []byte) *MeshEvent {
	if len(payload) < statusBinaryMinLen {
		return tooShort(RespStatusResponse, len(payload), statusBinaryMinLen)
	}
	sr := &StatusResponse{}
	decodeStatusFixedFields(sr, payload)
	if len(payload) >= statusFixedFieldsLen+4 {
		sr.RxAirtime = binio.ReadUint32LE(payload, statusFixedFieldsLen)
	}
	return &MeshEvent{Kind: EventStatusResponse, StatusResponse: sr}
}

func decodeStatusFixedFields(sr *StatusResponse, f []byte) {
	sr.BatteryMilliV = binio.ReadUint16LE(f, 0)
	sr.TxQueueLen = binio.ReadUint16LE(f, 2)
	sr.NoiseFloor = binio.ReadInt16LE(f, 4)
	sr.LastRSSI = binio.ReadInt16LE(f, 6)
	sr.PacketsRecv = binio.ReadUint32LE(f, 8)
	sr.PacketsSent = binio.ReadUint32LE(f, 12)
	sr.Airtime = binio.ReadUint32LE(f, 16)
	sr.Uptime = binio.ReadUint32LE(f, 20)
	sr.SentFlood = binio.ReadUint32LE(f, 24)
	sr.SentDirect = binio.ReadUint32LE(f, 28)
	sr.RecvFlood = binio.ReadUint32LE(f, 32)
	sr.RecvDirect = binio.ReadUint32LE(f, 36)
	sr.FullEvents = binio.ReadUint16LE(f, 40)
	sr.LastSNR = float64(binio.ReadInt16LE(f, 42)) / 4.0
	sr.DirectDups = binio.ReadUint16LE(f, 44)
	sr.FloodDups = binio.ReadUint16LE(f, 46)
}
