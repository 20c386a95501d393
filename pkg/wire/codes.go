package wire

// Command is a one-byte outgoing frame code.
type Command uint8

// Command codes, per the companion protocol's command table.
const (
	CmdAppStart         Command = 0x01
	CmdSendTxtMsg       Command = 0x02
	CmdSendChannelMsg   Command = 0x03
	CmdGetContacts      Command = 0x04
	CmdGetTime          Command = 0x05
	CmdSetTime          Command = 0x06
	CmdAdvert           Command = 0x07
	CmdSetName          Command = 0x08
	CmdGetMessage       Command = 0x0A
	CmdGetChannel       Command = 0x0B
	CmdSetChannel       Command = 0x0C
	CmdSetCoords        Command = 0x0E
	CmdReboot           Command = 0x13
	CmdGetBattery       Command = 0x14
	CmdDeviceQuery      Command = 0x16
	CmdSendLogin        Command = 0x1A
	CmdSendStatusReq    Command = 0x1B
	CmdSendLogout       Command = 0x1D
	CmdSendTelemetryReq Command = 0x1E
	CmdSendTraceReq     Command = 0x1F
	CmdPathDiscovery    Command = 0x20
	CmdSetRadio         Command = 0x21
	CmdGetNeighbours    Command = 0x22
	CmdGetACL           Command = 0x23
	CmdGetMMA           Command = 0x24
	CmdGetCustomVars    Command = 0x25
	CmdGetStats         Command = 0x26
	CmdSignStart        Command = 0x27
	CmdSignFinish       Command = 0x28
	CmdExportPrivateKey Command = 0x29
	CmdResetPath        Command = 0x2A
	CmdAddContact       Command = 0x2B
	CmdRemoveContact    Command = 0x2C

	// appStartAdvertSubtype is the second byte of CmdAppStart, fixed by
	// the protocol to indicate advertisement-capable clients.
	appStartAdvertSubtype = 0x03

	// channelMsgTextType is the textType byte sendChannelMessage uses to
	// distinguish a channel send from an appStart frame sharing a
	// similarly-shaped header.
	channelMsgTextType = 0x00
	commandMsgTextType = 0x01
)

// ResponseCode is a one-byte incoming frame code.
type ResponseCode uint8

// Response/push codes, per the companion protocol's response table.
const (
	RespOK                 ResponseCode = 0x00
	RespError              ResponseCode = 0x01
	RespContactsStart      ResponseCode = 0x02
	RespContact            ResponseCode = 0x03
	RespContactsEnd        ResponseCode = 0x04
	RespSelfInfo           ResponseCode = 0x05
	RespSent               ResponseCode = 0x06
	RespContactMsgRecv     ResponseCode = 0x07
	RespChannelMsgRecv     ResponseCode = 0x08
	RespCurrentTime        ResponseCode = 0x09
	RespNoMoreMessages     ResponseCode = 0x0A
	RespChannelInfo        ResponseCode = 0x0B
	RespBattery            ResponseCode = 0x0C
	RespDeviceInfo         ResponseCode = 0x0D
	RespCustomVars         ResponseCode = 0x0E
	RespSignature          ResponseCode = 0x0F
	RespDisabled           ResponseCode = 0x10
	RespStatsCore          ResponseCode = 0x11
	RespStatsRadio         ResponseCode = 0x12
	RespStatsPackets       ResponseCode = 0x13
	RespStatusResponse     ResponseCode = 0x14
	RespTelemetryResponse  ResponseCode = 0x15
	RespNeighboursResponse ResponseCode = 0x16
	RespACLResponse        ResponseCode = 0x17
	RespMMAResponse        ResponseCode = 0x18

	// Push codes (asynchronous, not solicited by a pending request).
	PushMsgWaiting    ResponseCode = 0x80
	PushNewAdvert     ResponseCode = 0x81
	PushLoginResult   ResponseCode = 0x82
	PushKeepAliveAck  ResponseCode = 0x83
	PushStatusPush    ResponseCode = 0x84
	PushTracePacket   ResponseCode = 0x85
	PushPathResponse  ResponseCode = 0x86

	// PushAckConfirmed is firmware's asynchronous delivery confirmation:
	// a 4-byte ack code (the same opaque tag returned as expectedAck by
	// RespSent) echoed back once the mesh confirms delivery. pkg/messaging
	// matches it against its pending AckEntry table.
	PushAckConfirmed ResponseCode = 0x87
)

// IsPush reports whether code is one of the asynchronous push codes that
// pkg/session broadcasts to subscribers instead of satisfying a pending
// request.
func (c ResponseCode) IsPush() bool {
	return c >= 0x80
}

// ErrorCode is the one-byte payload of a RespError frame.
type ErrorCode uint8

// Device query and telemetry-channel subtypes used by a handful of
// commands that share a byte layout with a leading discriminator.
const (
	TelemetryChannelSelf Command = 0x00
)
