package wire

import (
	"fmt"

	"github.com/mikewren/PocketMesh-sub009/pkg/binio"
)

func parseFailure(reason string) *MeshEvent {
	return &MeshEvent{Kind: EventParseFailure, FailureReason: reason}
}

func tooShort(code ResponseCode, got, want int) *MeshEvent {
	return parseFailure(fmt.Sprintf("response 0x%02x: payload length %d shorter than minimum %d", uint8(code), got, want))
}

// Parse decodes one inbound frame's payload (the bytes following the
// response/push code) into a MeshEvent. prefixLen is only consulted for
// RespNeighboursResponse, where firmware's reply doesn't self-describe its
// prefix width; callers pass whatever width they requested (4 or 6). The
// returned event's Code field always echoes the code passed in, so callers
// (pkg/session) can correlate a parsed event back to a pending request's
// expected response-code set without a second switch.
func Parse(code ResponseCode, payload []byte, prefixLen int) *MeshEvent {
	ev := parseDispatch(code, payload, prefixLen)
	ev.Code = code
	return ev
}

func parseDispatch(code ResponseCode, payload []byte, prefixLen int) *MeshEvent {
	switch code {
	case RespOK:
		return &MeshEvent{Kind: EventOK}
	case RespError:
		if len(payload) < 1 {
			return tooShort(code, len(payload), 1)
		}
		return &MeshEvent{Kind: EventError, ErrorCode: payload[0]}
	case RespSelfInfo:
		return parseSelfInfo(payload)
	case RespContactsStart:
		return &MeshEvent{Kind: EventOK}
	case RespContact:
		return parseContact(payload)
	case RespContactsEnd:
		if len(payload) < 4 {
			return tooShort(code, len(payload), 4)
		}
		return &MeshEvent{Kind: EventContactsComplete, ContactsCount: binio.ReadUint32LE(payload, 0)}
	case RespChannelInfo:
		return parseChannelInfo(payload)
	case RespCurrentTime:
		if len(payload) < 4 {
			return tooShort(code, len(payload), 4)
		}
		return &MeshEvent{Kind: EventCurrentTime, CurrentTime: binio.ReadUint32LE(payload, 0)}
	case RespBattery:
		if len(payload) < 2 {
			return tooShort(code, len(payload), 2)
		}
		return &MeshEvent{Kind: EventBattery, BatteryMilliV: binio.ReadUint16LE(payload, 0)}
	case RespSent:
		return parseMessageSent(payload)
	case RespNoMoreMessages:
		return &MeshEvent{Kind: EventNoMessageAvailable}
	case RespContactMsgRecv:
		return parseContactMessage(payload)
	case RespChannelMsgRecv:
		return parseChannelMessage(payload)
	case RespStatusResponse:
		return ParseStatusResponseBinary(payload)
	case RespTelemetryResponse:
		return &MeshEvent{Kind: EventTelemetryResponse, Telemetry: &TelemetryResponse{RawLPP: append([]byte(nil), payload...)}}
	case RespNeighboursResponse:
		return ParseNeighboursResponse(payload, prefixLen)
	case RespACLResponse:
		return ParseACLResponse(payload)
	case RespMMAResponse:
		return ParseMMAResponse(payload)
	case RespCustomVars:
		return parseCustomVars(payload)
	case RespStatsCore:
		return &MeshEvent{Kind: EventStatsCore, StatsCore: &CoreStats{Raw: append([]byte(nil), payload...)}}
	case RespStatsRadio:
		return &MeshEvent{Kind: EventStatsRadio, StatsRadio: &RadioStats{Raw: append([]byte(nil), payload...)}}
	case RespStatsPackets:
		return &MeshEvent{Kind: EventStatsPackets, StatsPackets: &PacketStats{Raw: append([]byte(nil), payload...)}}
	case RespSignature:
		return &MeshEvent{Kind: EventSignature, Signature: append([]byte(nil), payload...)}
	case RespDeviceInfo:
		return &MeshEvent{Kind: EventDeviceInfo, DeviceInfo: append([]byte(nil), payload...)}
	case RespDisabled:
		return &MeshEvent{Kind: EventDisabled}
	case PushMsgWaiting:
		return &MeshEvent{Kind: EventMessageWaiting}
	case PushNewAdvert:
		return parseNewAdvert(payload)
	case PushLoginResult:
		return parseLoginResult(payload)
	case PushStatusPush:
		return ParseStatusResponsePush(payload)
	case PushKeepAliveAck:
		if len(payload) < 4 {
			return tooShort(code, len(payload), 4)
		}
		return &MeshEvent{Kind: EventKeepAliveAck, KeepAliveAt: binio.ReadUint32LE(payload, 0)}
	case PushAckConfirmed:
		if len(payload) < 4 {
			return tooShort(code, len(payload), 4)
		}
		return &MeshEvent{Kind: EventAckConfirmed, AckCode: binio.ReadUint32LE(payload, 0)}
	default:
		return parseFailure(fmt.Sprintf("unknown response code 0x%02x", uint8(code)))
	}
}

func parseMessageSent(payload []byte) *MeshEvent {
	const minLen = 1 + 4 + 4
	if len(payload) < minLen {
		return tooShort(RespSent, len(payload), minLen)
	}
	info := &MessageSentInfo{Type: payload[0]}
	copy(info.ExpectedAck[:], payload[1:5])
	info.SuggestedTimeoutMs = binio.ReadUint32LE(payload, 5)
	return &MeshEvent{Kind: EventMessageSent, MessageSent: info}
}

func parseChannelInfo(payload []byte) *MeshEvent {
	const minLen = 1 + 32 + 16
	if len(payload) < minLen {
		return tooShort(RespChannelInfo, len(payload), minLen)
	}
	ci := &ChannelInfo{
		Index: payload[0],
		Name:  binio.NulTerminatedLossyString(payload[1:33]),
	}
	copy(ci.Secret[:], payload[33:49])
	return &MeshEvent{Kind: EventChannelInfo, ChannelInfo: ci}
}

func parseCustomVars(payload []byte) *MeshEvent {
	vars := make(map[string]string)
	s := string(payload)
	for _, pair := range splitNonEmpty(s, ',') {
		k, v, ok := cutOnce(pair, ':')
		if !ok {
			continue
		}
		vars[k] = v
	}
	return &MeshEvent{Kind: EventCustomVars, CustomVars: vars}
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func cutOnce(s string, sep byte) (before, after string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func parseLoginResult(payload []byte) *MeshEvent {
	const minLen = 1 + 4
	if len(payload) < minLen {
		return tooShort(PushLoginResult, len(payload), minLen)
	}
	return &MeshEvent{
		Kind:           EventLoginResult,
		LoginPermLevel: payload[0],
		LoginSessionID: binio.ReadUint32LE(payload, 1),
	}
}
