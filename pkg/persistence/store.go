package persistence

import "time"

// ContactRecord is the persisted shape of a wire.ContactFrame, keyed by
// the contact's public key (hex-encoded, stable across syncs).
type ContactRecord struct {
	PublicKeyHex string    `json:"public_key_hex"`
	Type         uint8     `json:"type"`
	Flags        uint8     `json:"flags,omitempty"`
	Name         string    `json:"name"`
	LastAdvert   uint32    `json:"last_advert,omitempty"`
	LatMicroDeg  int32     `json:"lat_micro_deg,omitempty"`
	LonMicroDeg  int32     `json:"lon_micro_deg,omitempty"`
	LastMod      uint32    `json:"last_mod,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChannelRecord is the persisted shape of a wire.ChannelInfo. A NUL-named
// channel (spec §4.10) is persisted with Disabled set instead of keeping
// the raw empty name.
type ChannelRecord struct {
	Index     uint8     `json:"index"`
	Name      string    `json:"name,omitempty"`
	Disabled  bool      `json:"disabled,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageKind distinguishes a direct contact message from a channel
// broadcast message.
type MessageKind uint8

const (
	MessageKindContact MessageKind = iota
	MessageKindChannel
)

// MessageRecord is one received message appended during the messages
// sync phase (spec §4.10 step 3).
type MessageRecord struct {
	Kind            MessageKind `json:"kind"`
	SenderPrefixHex string      `json:"sender_prefix_hex,omitempty"`
	Channel         uint8       `json:"channel,omitempty"`
	Text            string      `json:"text"`
	Timestamp       uint32      `json:"timestamp"`
	ReceivedAt      time.Time   `json:"received_at"`
}

// PersistenceStore is the boundary spec §6 describes: the core never
// assumes a schema beyond upserting contacts/channels/messages by stable
// id and reading/writing lastSyncTimestamp.
type PersistenceStore interface {
	UpsertContact(c ContactRecord) error
	UpsertChannel(c ChannelRecord) error
	AppendMessage(m MessageRecord) error

	LastSyncTimestamp() (uint32, error)
	SetLastSyncTimestamp(ts uint32) error
}
