package session

import (
	"context"

	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// okOrError is the expect set shared by every RPC whose device-side
// success reply is a bare RespOK.
func okOrError() map[wire.ResponseCode]bool {
	return map[wire.ResponseCode]bool{wire.RespOK: true}
}

// GetChannel fetches one channel slot's name and secret.
func (s *Session) GetChannel(ctx context.Context, index uint8) (*wire.ChannelInfo, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.GetChannel(index), map[wire.ResponseCode]bool{wire.RespChannelInfo: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.ChannelInfo, nil
}

// SetChannel configures one channel slot.
func (s *Session) SetChannel(ctx context.Context, index uint8, name string, secret [16]byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SetChannel(index, name, secret), okOrError(), DefaultRequestTimeout)
	return err
}

// GetContacts fetches every contact modified since the given timestamp (0
// for the full table). The device replies with a run of RespContact frames
// closed by RespContactsEnd; GetContacts collects the run and returns it
// alongside the reported total count.
func (s *Session) GetContacts(ctx context.Context, since uint32) ([]*wire.ContactFrame, uint32, error) {
	if err := s.requireStarted(); err != nil {
		return nil, 0, err
	}
	terminal := map[wire.ResponseCode]bool{wire.RespContactsEnd: true}
	ev, collected, err := s.requestCollecting(ctx, wire.GetContacts(since), true, wire.RespContact, terminal, DefaultRequestTimeout)
	if err != nil {
		return nil, 0, err
	}
	contacts := make([]*wire.ContactFrame, 0, len(collected))
	for _, c := range collected {
		if c.Contact != nil {
			contacts = append(contacts, c.Contact)
		}
	}
	return contacts, ev.ContactsCount, nil
}

// AddContact adds or replaces a contact from its 147-byte wire encoding.
func (s *Session) AddContact(ctx context.Context, encoded []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.AddContact(encoded), okOrError(), DefaultRequestTimeout)
	return err
}

// RemoveContact deletes a contact addressed by public-key prefix.
func (s *Session) RemoveContact(ctx context.Context, publicKeyPrefix []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.RemoveContact(publicKeyPrefix), okOrError(), DefaultRequestTimeout)
	return err
}

// ResetPath forces flood routing on the next send to this contact.
func (s *Session) ResetPath(ctx context.Context, publicKeyPrefix []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.ResetPath(publicKeyPrefix), okOrError(), DefaultRequestTimeout)
	return err
}

// SendPathDiscovery probes for a route to a 32-byte (padded) destination.
func (s *Session) SendPathDiscovery(ctx context.Context, to []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendPathDiscovery(to), okOrError(), DefaultRequestTimeout)
	return err
}

// SendMessage queues a direct text message and returns the device's
// ack-correlation hint (pkg/messaging keys its ACK table off this).
func (s *Session) SendMessage(ctx context.Context, to [6]byte, text string, ts uint32, attempt uint8) (*wire.MessageSentInfo, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.SendMessage(to, text, ts, attempt), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.MessageSent, nil
}

// SendChannelMessage queues a channel broadcast message. Channel sends have
// no per-message ack, so the device reply is a bare RespSent acknowledging
// the send was queued.
func (s *Session) SendChannelMessage(ctx context.Context, channel uint8, text string, ts uint32) (*wire.MessageSentInfo, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.SendChannelMessage(channel, text, ts), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.MessageSent, nil
}

// SendCommand sends a direct message marked for command routing rather
// than the chat UI (e.g. a remote-node CLI command).
func (s *Session) SendCommand(ctx context.Context, to [6]byte, text string, ts uint32) (*wire.MessageSentInfo, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.SendCommand(to, text, ts), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.MessageSent, nil
}

// SendLogin authenticates to a remote node (spec §4.8's sendLogin). The
// result arrives asynchronously as a loginResult push, not synchronously
// here; SendLogin only confirms the device accepted and queued the frame.
func (s *Session) SendLogin(ctx context.Context, to []byte, password string) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendLogin(to, password), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	return err
}

// SendLogout ends a remote-node session.
func (s *Session) SendLogout(ctx context.Context, to []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendLogout(to), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	return err
}

// SendStatusRequest requests a remote node's link/radio counters. Like
// SendLogin, the actual StatusResponse arrives later as a push.
func (s *Session) SendStatusRequest(ctx context.Context, to []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendStatusRequest(to), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	return err
}

// RequestTelemetry requests a remote node's Cayenne LPP telemetry; the
// RawLPP payload arrives as a push decoded with pkg/lpp.
func (s *Session) RequestTelemetry(ctx context.Context, to []byte) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendTelemetryRequest(to), map[wire.ResponseCode]bool{wire.RespSent: true}, DefaultRequestTimeout)
	return err
}

// SetTime sets the device's clock (seconds since epoch).
func (s *Session) SetTime(ctx context.Context, t uint32) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SetTime(t), okOrError(), DefaultRequestTimeout)
	return err
}

// GetTime reads the device's clock.
func (s *Session) GetTime(ctx context.Context) (uint32, error) {
	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	ev, err := s.request(ctx, wire.GetTime(), map[wire.ResponseCode]bool{wire.RespCurrentTime: true}, DefaultRequestTimeout)
	if err != nil {
		return 0, err
	}
	return ev.CurrentTime, nil
}

// SetName sets the device's advertised node name.
func (s *Session) SetName(ctx context.Context, name string) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SetName(name), okOrError(), DefaultRequestTimeout)
	return err
}

// SetCoordinates sets the device's advertised location.
func (s *Session) SetCoordinates(ctx context.Context, lat, lon float64) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SetCoordinates(lat, lon), okOrError(), DefaultRequestTimeout)
	return err
}

// SetRadio reconfigures the LoRa radio parameters.
func (s *Session) SetRadio(ctx context.Context, freqMHz, bwKHz float64, sf, cr uint8) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SetRadio(freqMHz, bwKHz, sf, cr), okOrError(), DefaultRequestTimeout)
	return err
}

// SendAdvertisement triggers an immediate advert, optionally flood-routed.
func (s *Session) SendAdvertisement(ctx context.Context, flood bool) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.SendAdvertisement(flood), okOrError(), DefaultRequestTimeout)
	return err
}

// Reboot restarts the companion device.
func (s *Session) Reboot(ctx context.Context) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	_, err := s.request(ctx, wire.Reboot(), okOrError(), DefaultRequestTimeout)
	return err
}

// DeviceQuery requests the raw firmware/build identification payload.
func (s *Session) DeviceQuery(ctx context.Context) ([]byte, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.DeviceQuery(), map[wire.ResponseCode]bool{wire.RespDeviceInfo: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.DeviceInfo, nil
}

// GetBattery reads the device's battery voltage.
func (s *Session) GetBattery(ctx context.Context) (uint16, error) {
	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	ev, err := s.request(ctx, wire.GetBattery(), map[wire.ResponseCode]bool{wire.RespBattery: true}, DefaultRequestTimeout)
	if err != nil {
		return 0, err
	}
	return ev.BatteryMilliV, nil
}

// FetchAllNeighbours requests the device's one-hop neighbour table.
// prefixLength selects 4- or 6-byte public-key prefixes in the reply; pass
// 0 to use DefaultNeighbourPrefixLen.
func (s *Session) FetchAllNeighbours(ctx context.Context, prefixLength uint8) ([]wire.Neighbour, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	if prefixLength == 0 {
		prefixLength = DefaultNeighbourPrefixLen
	}
	ev, err := s.request(ctx, wire.GetNeighbours(prefixLength), map[wire.ResponseCode]bool{wire.RespNeighboursResponse: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.Neighbours, nil
}

// GetACL fetches the device's access-control list.
func (s *Session) GetACL(ctx context.Context) ([]wire.ACLEntry, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.GetACL(), map[wire.ResponseCode]bool{wire.RespACLResponse: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.ACLEntries, nil
}

// GetMMA fetches min/max/avg telemetry summaries.
func (s *Session) GetMMA(ctx context.Context) ([]wire.MMAEntry, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	ev, err := s.request(ctx, wire.GetMMA(), map[wire.ResponseCode]bool{wire.RespMMAResponse: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ev.MMAEntries, nil
}

// GetMessage drains one entry from the device's outgoing message queue, or
// reports none available. pkg/sync's Coordinator.RunMessagesPhase calls
// this in a loop.
func (s *Session) GetMessage(ctx context.Context) (*wire.MeshEvent, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	expect := map[wire.ResponseCode]bool{
		wire.RespContactMsgRecv: true,
		wire.RespChannelMsgRecv: true,
		wire.RespNoMoreMessages: true,
	}
	return s.request(ctx, wire.GetMessage(), expect, DefaultRequestTimeout)
}
