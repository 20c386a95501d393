package sync

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/persistence"
	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// SyncPhase identifies one of the three sequential sync phases (spec
// §4.10).
type SyncPhase uint8

const (
	PhaseContacts SyncPhase = iota
	PhaseChannels
	PhaseMessages
)

// String returns the phase name.
func (p SyncPhase) String() string {
	switch p {
	case PhaseContacts:
		return "contacts"
	case PhaseChannels:
		return "channels"
	case PhaseMessages:
		return "messages"
	default:
		return "unknown"
	}
}

// DefaultMaxChannels is the number of channel slots a coordinator probes
// during the channels phase, absent device-specific information.
const DefaultMaxChannels = 8

// Callbacks are the application-facing notifications spec §6 names for
// this component.
type Callbacks struct {
	OnSyncStarted      func()
	OnSyncEnded        func()
	OnSyncPhaseChanged func(phase SyncPhase)
	OnPhaseError       func(phase SyncPhase, err error)
	OnContactsChanged  func()
	OnDirectMessage    func(msg *wire.ContactMessage)
	OnChannelMessage   func(msg *wire.ChannelMessage)
}

// Config tunes the coordinator. Zero MaxChannels falls back to
// DefaultMaxChannels.
type Config struct {
	MaxChannels uint8
}

// Coordinator drives the contacts -> channels -> messages sequence over
// a session.Session, persisting results through a
// persistence.PersistenceStore.
type Coordinator struct {
	sess  *session.Session
	store persistence.PersistenceStore
	cfg   Config
	cb    Callbacks
}

// New creates a Coordinator. store may be nil to skip persistence (the
// coordinator still drives callbacks).
func New(sess *session.Session, store persistence.PersistenceStore, cfg Config, cb Callbacks) *Coordinator {
	if cfg.MaxChannels == 0 {
		cfg.MaxChannels = DefaultMaxChannels
	}
	return &Coordinator{sess: sess, store: store, cfg: cfg, cb: cb}
}

// Run executes all three phases in order (spec §4.10). It brackets the
// whole run with OnSyncStarted/OnSyncEnded and fires OnSyncPhaseChanged
// at each boundary; a phase's error is reported via OnPhaseError but
// never prevents the next phase from running.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.cb.OnSyncStarted != nil {
		c.cb.OnSyncStarted()
	}
	defer func() {
		if c.cb.OnSyncEnded != nil {
			c.cb.OnSyncEnded()
		}
	}()

	var firstErr error

	c.phaseChanged(PhaseContacts)
	if err := c.RunContactsPhase(ctx); err != nil {
		c.phaseError(PhaseContacts, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	c.phaseChanged(PhaseChannels)
	if err := c.RunChannelsPhase(ctx); err != nil {
		c.phaseError(PhaseChannels, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	c.phaseChanged(PhaseMessages)
	if err := c.RunMessagesPhase(ctx); err != nil {
		c.phaseError(PhaseMessages, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *Coordinator) phaseChanged(p SyncPhase) {
	if c.cb.OnSyncPhaseChanged != nil {
		c.cb.OnSyncPhaseChanged(p)
	}
}

func (c *Coordinator) phaseError(p SyncPhase, err error) {
	if c.cb.OnPhaseError != nil {
		c.cb.OnPhaseError(p, err)
	}
}

// RunContactsPhase fetches all contacts since the store's last sync
// cursor, upserts each, and advances the cursor on completion.
func (c *Coordinator) RunContactsPhase(ctx context.Context) error {
	var since uint32
	if c.store != nil {
		ts, err := c.store.LastSyncTimestamp()
		if err != nil {
			return err
		}
		since = ts
	}

	contacts, _, err := c.sess.GetContacts(ctx, since)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, contact := range contacts {
		if c.store != nil {
			if err := c.store.UpsertContact(contactRecord(contact, now)); err != nil {
				return err
			}
		}
	}

	if c.store != nil {
		if err := c.store.SetLastSyncTimestamp(uint32(now.Unix())); err != nil {
			return err
		}
	}

	if len(contacts) > 0 && c.cb.OnContactsChanged != nil {
		c.cb.OnContactsChanged()
	}
	return nil
}

// RunChannelsPhase probes every configured channel slot and upserts the
// result. A NUL-named channel is persisted as disabled (spec §4.10).
func (c *Coordinator) RunChannelsPhase(ctx context.Context) error {
	now := time.Now()
	for i := uint8(0); i < c.cfg.MaxChannels; i++ {
		info, err := c.sess.GetChannel(ctx, i)
		if err != nil {
			return err
		}
		if c.store == nil {
			continue
		}
		rec := persistence.ChannelRecord{
			Index:     info.Index,
			Name:      info.Name,
			Disabled:  info.Name == "",
			UpdatedAt: now,
		}
		if err := c.store.UpsertChannel(rec); err != nil {
			return err
		}
	}
	return nil
}

// RunMessagesPhase drains the device's message queue, routing each
// decoded message to the application sink and the persistence store,
// until the device reports no more messages are available. Also used to
// re-enter the messages phase on a MSG_WAITING push (spec §4.11).
func (c *Coordinator) RunMessagesPhase(ctx context.Context) error {
	for {
		ev, err := c.sess.GetMessage(ctx)
		if err != nil {
			return err
		}
		switch ev.Kind {
		case wire.EventNoMessageAvailable:
			return nil
		case wire.EventContactMessageReceived:
			c.handleContactMessage(ev.ContactMessage)
		case wire.EventChannelMessageReceived:
			c.handleChannelMessage(ev.ChannelMessage)
		}
	}
}

func (c *Coordinator) handleContactMessage(msg *wire.ContactMessage) {
	if msg == nil {
		return
	}
	if c.store != nil {
		c.store.AppendMessage(persistence.MessageRecord{
			Kind:            persistence.MessageKindContact,
			SenderPrefixHex: hex.EncodeToString(msg.SenderPrefix[:]),
			Text:            msg.Text,
			Timestamp:       msg.Timestamp,
			ReceivedAt:      time.Now(),
		})
	}
	if c.cb.OnDirectMessage != nil {
		c.cb.OnDirectMessage(msg)
	}
}

func (c *Coordinator) handleChannelMessage(msg *wire.ChannelMessage) {
	if msg == nil {
		return
	}
	if c.store != nil {
		c.store.AppendMessage(persistence.MessageRecord{
			Kind:       persistence.MessageKindChannel,
			Channel:    msg.Channel,
			Text:       msg.Text,
			Timestamp:  msg.Timestamp,
			ReceivedAt: time.Now(),
		})
	}
	if c.cb.OnChannelMessage != nil {
		c.cb.OnChannelMessage(msg)
	}
}

func contactRecord(c *wire.ContactFrame, now time.Time) persistence.ContactRecord {
	return persistence.ContactRecord{
		PublicKeyHex: hex.EncodeToString(c.PublicKey[:]),
		Type:         c.Type,
		Flags:        c.Flags,
		Name:         c.Name,
		LastAdvert:   c.LastAdvert,
		LatMicroDeg:  c.LatMicroDeg,
		LonMicroDeg:  c.LonMicroDeg,
		LastMod:      c.LastMod,
		UpdatedAt:    now,
	}
}
