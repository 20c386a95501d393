package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3/api"
)

// Advertiser provides mDNS advertising of a companion bridge.
type Advertiser interface {
	// AdvertiseCompanion starts advertising the companion bridge.
	AdvertiseCompanion(ctx context.Context, info *CompanionInfo) error

	// UpdateCompanion updates TXT records for the advertised companion bridge.
	UpdateCompanion(info *CompanionInfo) error

	// StopCompanion stops advertising the companion bridge.
	StopCompanion() error

	// StopAll stops all advertisements.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration

	// Quiet suppresses all mDNS network operations. When true, the
	// advertiser methods return nil without sending any multicast
	// traffic, while DiscoveryManager still tracks state correctly. Use
	// this in test mode where the test harness connects directly by
	// address.
	Quiet bool

	// ConnectionFactory creates multicast connections.
	// If nil, uses the default zeroconf connection factory.
	// Set this in tests to inject mock connections.
	ConnectionFactory api.ConnectionFactory

	// InterfaceProvider lists network interfaces.
	// If nil, uses the default zeroconf interface provider.
	// Set this in tests to inject mock interface lists.
	InterfaceProvider api.InterfaceProvider
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// DiscoveryManager tracks whether the companion bridge is currently
// advertising and wraps an Advertiser with that state. It is meant to be
// driven by the transport's connection lifecycle: advertise once a bridge
// has accepted a listener, stop when the bridge shuts down.
type DiscoveryManager struct {
	mu sync.RWMutex

	state      DiscoveryState
	advertiser Advertiser

	info *CompanionInfo

	onStateChange func(old, new DiscoveryState)
}

// NewDiscoveryManager creates a new discovery manager.
func NewDiscoveryManager(advertiser Advertiser) *DiscoveryManager {
	return &DiscoveryManager{
		state:      StateUnregistered,
		advertiser: advertiser,
	}
}

// State returns the current discovery state.
func (m *DiscoveryManager) State() DiscoveryState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAdvertising reports whether the bridge is currently advertised.
func (m *DiscoveryManager) IsAdvertising() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAdvertising
}

// OnStateChange sets a callback for state changes.
func (m *DiscoveryManager) OnStateChange(fn func(old, new DiscoveryState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// SetCompanionInfo sets the bridge's advertised information. Call this
// before StartAdvertising, or call UpdateCompanionInfo afterwards.
func (m *DiscoveryManager) SetCompanionInfo(info *CompanionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info = info
}

// StartAdvertising starts advertising the companion bridge. Idempotent: if
// already advertising, it is a no-op.
func (m *DiscoveryManager) StartAdvertising(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.info == nil {
		return ErrMissingRequired
	}
	if m.state == StateAdvertising {
		return nil
	}

	if err := m.advertiser.AdvertiseCompanion(ctx, m.info); err != nil {
		return err
	}

	oldState := m.state
	m.state = StateAdvertising
	if m.onStateChange != nil {
		m.onStateChange(oldState, m.state)
	}
	return nil
}

// UpdateCompanionInfo updates the advertised TXT records in place if
// currently advertising, and always updates the info used by a future
// StartAdvertising call.
func (m *DiscoveryManager) UpdateCompanionInfo(info *CompanionInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.info = info
	if m.state != StateAdvertising {
		return nil
	}
	return m.advertiser.UpdateCompanion(info)
}

// StopAdvertising stops advertising the companion bridge.
func (m *DiscoveryManager) StopAdvertising() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAdvertising {
		return nil
	}

	if err := m.advertiser.StopCompanion(); err != nil {
		return err
	}

	oldState := m.state
	m.state = StateUnregistered
	if m.onStateChange != nil {
		m.onStateChange(oldState, m.state)
	}
	return nil
}

// Stop stops all advertising and resets state.
func (m *DiscoveryManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.advertiser.StopAll()

	oldState := m.state
	m.state = StateUnregistered
	if m.onStateChange != nil && oldState != m.state {
		m.onStateChange(oldState, m.state)
	}
}
