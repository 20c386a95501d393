package wire

import (
	"math"

	"github.com/mikewren/PocketMesh-sub009/pkg/binio"
)

// DefaultClientID is the companion client identifier firmware expects when
// the caller doesn't supply one.
const DefaultClientID = "MCore"

// clientIDFieldLen is the width of appStart's reserved field (bytes
// 2..=7, 6 bytes), which is always filled with ASCII spaces. It is NOT the
// same as the 5-byte client-id truncation budget; the id follows the
// field rather than occupying it.
const clientIDFieldLen = 6
const clientIDTruncateLen = 5

// AppStart builds the appStart handshake frame: command 0x01, a fixed
// subtype byte, six reserved bytes set to ASCII space, then the
// UTF-8-safe-truncated (at most 5 bytes, unpadded) client id starting at
// byte 8, so the frame is at most 13 bytes long.
func AppStart(clientID string) []byte {
	if clientID == "" {
		clientID = DefaultClientID
	}
	frame := make([]byte, 2+clientIDFieldLen+clientIDTruncateLen)
	frame[0] = byte(CmdAppStart)
	frame[1] = appStartAdvertSubtype
	for i := 2; i < 2+clientIDFieldLen; i++ {
		frame[i] = 0x20
	}
	id := binio.UTF8Prefix(clientID, clientIDTruncateLen)
	copy(frame[2+clientIDFieldLen:], id)
	return frame[:2+clientIDFieldLen+len(id)]
}

// SetTime builds the setTime frame.
func SetTime(t uint32) []byte {
	frame := []byte{byte(CmdSetTime)}
	return binio.AppendUint32LE(frame, t)
}

// SetName builds the setName frame. The name is UTF-8-encoded verbatim;
// there is no length prefix and no NUL padding.
func SetName(name string) []byte {
	frame := []byte{byte(CmdSetName)}
	return append(frame, []byte(name)...)
}

// SetCoordinates builds the setCoordinates frame. Latitude/longitude are
// degrees, scaled by 1e6 and rounded to the nearest signed 32-bit integer.
func SetCoordinates(lat, lon float64) []byte {
	frame := []byte{byte(CmdSetCoords)}
	frame = binio.AppendInt32LE(frame, round1e6(lat))
	frame = binio.AppendInt32LE(frame, round1e6(lon))
	frame = append(frame, 0, 0, 0, 0)
	return frame
}

func round1e6(v float64) int32 {
	return int32(math.Round(v * 1e6))
}

// SetRadio builds the setRadio frame. Frequency and bandwidth are
// expressed in their natural units (MHz, kHz) and scaled ×1000 on the
// wire; spreading factor and coding rate are single bytes.
func SetRadio(freqMHz, bwKHz float64, sf, cr uint8) []byte {
	frame := []byte{byte(CmdSetRadio)}
	frame = binio.AppendUint32LE(frame, uint32(math.Round(freqMHz*1000)))
	frame = binio.AppendUint32LE(frame, uint32(math.Round(bwKHz*1000)))
	frame = append(frame, sf, cr)
	return frame
}

// SendMessage builds a direct-message send frame. The destination public
// key prefix is a fixed 6-byte array and is written verbatim.
func SendMessage(to [6]byte, text string, ts uint32, attempt uint8) []byte {
	frame := []byte{byte(CmdSendTxtMsg), 0x00, attempt}
	frame = binio.AppendUint32LE(frame, ts)
	frame = append(frame, to[:]...)
	frame = append(frame, []byte(text)...)
	return frame
}

// SendChannelMessage builds a channel-message send frame.
func SendChannelMessage(channel uint8, text string, ts uint32) []byte {
	frame := []byte{byte(CmdSendChannelMsg), channel, 0, 0}
	frame = binio.AppendUint32LE(frame, ts)
	frame = append(frame, []byte(text)...)
	return frame
}

// SendCommand builds a direct "command" message — same layout as
// SendMessage but marked with the command text type so firmware routes it
// to a command handler instead of the chat UI.
func SendCommand(to [6]byte, text string, ts uint32) []byte {
	frame := []byte{byte(CmdSendTxtMsg), commandMsgTextType, 0}
	frame = binio.AppendUint32LE(frame, ts)
	frame = append(frame, to[:]...)
	frame = append(frame, []byte(text)...)
	return frame
}

// to32Padded renders an arbitrary-length destination identifier as a
// 32-byte field, truncated byte-wise or zero-padded, the layout sendLogin,
// sendLogout and sendStatusRequest all share.
func to32Padded(to []byte) []byte {
	out := make([]byte, 32)
	copy(out, to)
	return out
}

// SendLogin builds a login frame addressed to a 32-byte (padded) contact
// identifier, followed by the UTF-8 password.
func SendLogin(to []byte, password string) []byte {
	frame := []byte{byte(CmdSendLogin)}
	frame = append(frame, to32Padded(to)...)
	frame = append(frame, []byte(password)...)
	return frame
}

// SendLogout builds a logout frame.
func SendLogout(to []byte) []byte {
	frame := []byte{byte(CmdSendLogout)}
	return append(frame, to32Padded(to)...)
}

// SendStatusRequest builds a status-request frame.
func SendStatusRequest(to []byte) []byte {
	frame := []byte{byte(CmdSendStatusReq)}
	return append(frame, to32Padded(to)...)
}

// SendTelemetryRequest builds a telemetry-request frame.
func SendTelemetryRequest(to []byte) []byte {
	frame := []byte{byte(CmdSendTelemetryReq)}
	return append(frame, to32Padded(to)...)
}

// SetChannel builds a setChannel frame: index, 32-byte NUL-padded name,
// 16-byte secret.
func SetChannel(index uint8, name string, secret [16]byte) []byte {
	frame := []byte{byte(CmdSetChannel), index}
	frame = append(frame, binio.UTF8PaddedOrTruncated(name, 32)...)
	frame = append(frame, secret[:]...)
	return frame
}

// GetChannel builds a getChannel request frame.
func GetChannel(index uint8) []byte {
	return []byte{byte(CmdGetChannel), index}
}

// GetContacts builds a getContacts request frame, filtered to contacts
// modified since the given timestamp (0 requests the full set).
func GetContacts(since uint32) []byte {
	frame := []byte{byte(CmdGetContacts)}
	return binio.AppendUint32LE(frame, since)
}

// AddContact builds an addContact frame from a full 147-byte contact
// record encoding (see ContactFrame).
func AddContact(encoded []byte) []byte {
	frame := []byte{byte(CmdAddContact)}
	return append(frame, encoded...)
}

// RemoveContact builds a removeContact frame addressed by public key
// prefix.
func RemoveContact(publicKeyPrefix []byte) []byte {
	frame := []byte{byte(CmdRemoveContact)}
	return append(frame, publicKeyPrefix...)
}

// ResetPath builds a resetPath frame, forcing flood routing on the next
// send to this contact.
func ResetPath(publicKeyPrefix []byte) []byte {
	frame := []byte{byte(CmdResetPath)}
	return append(frame, publicKeyPrefix...)
}

// SendPathDiscovery builds a path-discovery probe frame addressed to a
// 32-byte (padded) destination.
func SendPathDiscovery(to []byte) []byte {
	frame := []byte{byte(CmdPathDiscovery)}
	return append(frame, to32Padded(to)...)
}

// SendTrace builds a trace-route probe frame.
func SendTrace(tag, authCode uint32, flags uint8) []byte {
	frame := []byte{byte(CmdSendTraceReq)}
	frame = binio.AppendUint32LE(frame, tag)
	frame = binio.AppendUint32LE(frame, authCode)
	frame = append(frame, flags)
	return frame
}

// SendAdvertisement builds an advert frame, optionally flood-routed.
func SendAdvertisement(flood bool) []byte {
	if flood {
		return []byte{byte(CmdAdvert), 0x01}
	}
	return []byte{byte(CmdAdvert)}
}

// GetTime builds a getTime request frame.
func GetTime() []byte {
	return []byte{byte(CmdGetTime)}
}

// GetBattery builds a getBattery request frame.
func GetBattery() []byte {
	return []byte{byte(CmdGetBattery)}
}

// GetMessage builds a getMessage request frame, draining the device's
// outgoing message queue one entry at a time.
func GetMessage() []byte {
	return []byte{byte(CmdGetMessage)}
}

// Reboot builds a reboot command frame.
func Reboot() []byte {
	return []byte{byte(CmdReboot)}
}

// DeviceQuery builds a device-query frame.
func DeviceQuery() []byte {
	return []byte{byte(CmdDeviceQuery)}
}

// GetNeighbours builds a neighbours-request frame. prefixLen selects
// whether firmware should respond with 4- or 6-byte prefixes; the caller
// must pass the same width into ParseNeighboursResponse.
func GetNeighbours(prefixLen uint8) []byte {
	return []byte{byte(CmdGetNeighbours), prefixLen}
}

// GetACL builds an ACL-request frame.
func GetACL() []byte {
	return []byte{byte(CmdGetACL)}
}

// GetMMA builds an MMA (min/max/avg telemetry) request frame.
func GetMMA() []byte {
	return []byte{byte(CmdGetMMA)}
}

// GetCustomVars builds a custom-vars request frame.
func GetCustomVars() []byte {
	return []byte{byte(CmdGetCustomVars)}
}

// GetStats builds a stats-request frame.
func GetStats() []byte {
	return []byte{byte(CmdGetStats)}
}
