package wire

// EventKind discriminates the MeshEvent tagged union produced by Parse.
type EventKind uint8

const (
	EventOK EventKind = iota
	EventError
	EventSelfInfo
	EventContact
	EventContactsComplete
	EventChannelInfo
	EventCurrentTime
	EventBattery
	EventMessageSent
	EventNoMessageAvailable
	EventContactMessageReceived
	EventChannelMessageReceived
	EventStatusResponse
	EventTelemetryResponse
	EventNeighboursResponse
	EventACLResponse
	EventMMAResponse
	EventCustomVars
	EventStatsCore
	EventStatsRadio
	EventStatsPackets
	EventSignature
	EventDeviceInfo
	EventDisabled
	EventNewAdvert
	EventLoginResult
	EventKeepAliveAck
	EventAckConfirmed
	EventMessageWaiting
	EventParseFailure
)

// MeshEvent is the tagged union every Parse entry point returns. Exactly one
// of the pointer/value fields matching Kind is populated; the rest are zero.
type MeshEvent struct {
	Kind EventKind

	// Code is the raw response/push code this event was parsed from.
	// Set uniformly by Parse regardless of Kind.
	Code ResponseCode

	// EventError / EventParseFailure
	ErrorCode    uint8
	FailureReason string

	SelfInfo        *SelfInfo
	Contact         *ContactFrame
	ContactsCount   uint32
	ChannelInfo     *ChannelInfo
	CurrentTime     uint32
	BatteryMilliV   uint16
	MessageSent     *MessageSentInfo
	ContactMessage  *ContactMessage
	ChannelMessage  *ChannelMessage
	StatusResponse  *StatusResponse
	Telemetry       *TelemetryResponse
	Neighbours      []Neighbour
	ACLEntries      []ACLEntry
	MMAEntries      []MMAEntry
	CustomVars      map[string]string
	StatsCore       *CoreStats
	StatsRadio      *RadioStats
	StatsPackets    *PacketStats
	Signature       []byte
	DeviceInfo      []byte
	NewAdvert       *ContactFrame
	LoginPermLevel  uint8
	LoginSessionID  uint32
	KeepAliveAt     uint32
	AckCode         uint32
}

// IsPush reports whether this event originated from an unsolicited push
// code rather than satisfying a pending request.
func (e *MeshEvent) IsPush() bool {
	switch e.Kind {
	case EventNewAdvert, EventLoginResult, EventKeepAliveAck, EventAckConfirmed, EventTelemetryResponse, EventMessageWaiting:
		return true
	default:
		return false
	}
}

// SelfInfo is the device's self-description, returned by appStart.
type SelfInfo struct {
	AdvertType       uint8
	TxPower          int8
	MaxTxPower       int8
	PublicKey        [32]byte
	LatMicroDeg      int32
	LonMicroDeg      int32
	MultiAck         bool
	AdvLocationPolicy uint8
	TelemetryModeBase uint8
	TelemetryModeLoc  uint8
	TelemetryModeEnv  uint8
	ManualAddContacts bool
	RadioFreqMHz     float64
	RadioBandwidthKHz float64
	SpreadingFactor  uint8
	CodingRate       uint8
	NodeName         string
}

// ContactFrame is the 147-byte contact record (§3 of the companion spec).
type ContactFrame struct {
	PublicKey      [32]byte
	Type           uint8
	Flags          uint8
	OutPathLength  int8
	OutPath        [64]byte
	Name           string
	LastAdvert     uint32
	LatMicroDeg    int32
	LonMicroDeg    int32
	LastMod        uint32
}

// ChannelInfo describes one configured channel slot.
type ChannelInfo struct {
	Index  uint8
	Name   string
	Secret [16]byte
}

// MessageSentInfo is returned by the device in response to a send command.
type MessageSentInfo struct {
	Type              uint8
	ExpectedAck       [4]byte
	SuggestedTimeoutMs uint32
}

// ExpectedAckCode returns the 4-byte ack tag as a little-endian uint32, the
// form used to key AckEntry in pkg/messaging.
func (m *MessageSentInfo) ExpectedAckCode() uint32 {
	return uint32(m.ExpectedAck[0]) | uint32(m.ExpectedAck[1])<<8 |
		uint32(m.ExpectedAck[2])<<16 | uint32(m.ExpectedAck[3])<<24
}

// ContactMessage is a received direct message (v3 wire form).
type ContactMessage struct {
	SNR          *float64
	SenderPrefix [6]byte
	PathLen      uint8
	TextType     uint8
	Timestamp    uint32
	Text         string
}

// ChannelMessage is a received channel message (v3 wire form).
type ChannelMessage struct {
	SNR       *float64
	Channel   uint8
	PathLen   uint8
	TextType  uint8
	Timestamp uint32
	Text      string
}

// StatusResponse carries link/radio/packet counters for a remote node.
// PubkeyPrefix and reserved fields are only populated by the push form;
// the binary-response form leaves PubkeyPrefix zeroed since it travels in
// the response envelope instead.
type StatusResponse struct {
	PubkeyPrefix  [6]byte
	BatteryMilliV uint16
	TxQueueLen    uint16
	NoiseFloor    int16
	LastRSSI      int16
	PacketsRecv   uint32
	PacketsSent   uint32
	Airtime       uint32
	Uptime        uint32
	SentFlood     uint32
	SentDirect    uint32
	RecvFlood     uint32
	RecvDirect    uint32
	FullEvents    uint16
	LastSNR       float64
	DirectDups    uint16
	FloodDups     uint16
	RxAirtime     uint32
}

// TelemetryResponse carries the raw LPP payload returned for a telemetry
// request; decode it with pkg/lpp.
type TelemetryResponse struct {
	RawLPP []byte
}

// Neighbour is one entry of a NEIGHBOURS_RESPONSE. PrefixLen indicates
// whether Prefix holds 4 or 6 meaningful bytes (the rest are zero).
type Neighbour struct {
	Prefix    [6]byte
	PrefixLen int
	SecsAgo   uint32
	SNR       float64
}

// ACLEntry is one non-empty entry of an ACL_RESPONSE.
type ACLEntry struct {
	Prefix      [6]byte
	Permissions uint8
}

// MMAEntry is one decoded min/max/avg telemetry reading.
type MMAEntry struct {
	Channel uint8
	Type    uint8
	Min     float64
	Max     float64
	Avg     float64
}

// CoreStats mirrors the firmware's core runtime counters.
type CoreStats struct {
	Raw []byte
}

// RadioStats mirrors the firmware's radio-level counters.
type RadioStats struct {
	Raw []byte
}

// PacketStats mirrors the firmware's packet-level counters.
type PacketStats struct {
	Raw []byte
}
