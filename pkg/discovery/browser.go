package discovery

import (
	"context"
	"time"

	"github.com/enbility/zeroconf/v3/api"
)

// Browser provides mDNS browsing for companion bridges.
type Browser interface {
	// BrowseCompanions searches for companion bridges.
	// Returns two channels: added (new bridges) and removed (bridges that
	// disappeared). Both channels are closed when the context is cancelled.
	BrowseCompanions(ctx context.Context) (added, removed <-chan *CompanionService, err error)

	// FindByPubkeyPrefix searches for a specific bridge by its node pubkey
	// prefix. Returns when found or when context is cancelled/timeout.
	FindByPubkeyPrefix(ctx context.Context, pubkeyPrefix string) (*CompanionService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// ConnectionFactory creates multicast connections.
	// If nil, uses the default zeroconf connection factory.
	// Set this in tests to inject mock connections.
	ConnectionFactory api.ConnectionFactory

	// InterfaceProvider lists network interfaces.
	// If nil, uses the default zeroconf interface provider.
	// Set this in tests to inject mock interface lists.
	InterfaceProvider api.InterfaceProvider
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc is a function that filters browse results.
type FilterFunc func(*CompanionService) bool

// FilterByPubkeyPrefix returns a filter that matches a specific pubkey prefix.
func FilterByPubkeyPrefix(pubkeyPrefix string) FilterFunc {
	return func(svc *CompanionService) bool {
		return svc.PubkeyPrefix == pubkeyPrefix
	}
}

// FilterByFrameVersion returns a filter that matches bridges advertising a
// given frame version.
func FilterByFrameVersion(frameVersion string) FilterFunc {
	return func(svc *CompanionService) bool {
		return svc.FrameVersion == frameVersion
	}
}

// FilterBrowseResults filters a channel of companion services.
func FilterBrowseResults(in <-chan *CompanionService, filter FilterFunc) <-chan *CompanionService {
	out := make(chan *CompanionService)
	go func() {
		defer close(out)
		for svc := range in {
			if filter(svc) {
				out <- svc
			}
		}
	}()
	return out
}

// ServiceEntry is a transport-agnostic view of a raw mDNS service entry.
// It is a helper for Browser implementations that don't use zeroconf
// directly (e.g. in tests).
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToCompanionService converts a ServiceEntry to CompanionService.
func (e *ServiceEntry) ToCompanionService() (*CompanionService, error) {
	txt := StringsToTXTRecords(e.Text)
	svc, err := DecodeCompanionTXT(txt)
	if err != nil {
		return nil, err
	}

	svc.InstanceName = e.Instance
	svc.Host = e.Host
	svc.Port = e.Port
	svc.Addresses = e.Addrs

	return svc, nil
}
