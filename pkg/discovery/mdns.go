package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu sync.Mutex

	companionServer *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{config: config}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// serverOptions returns zeroconf server options based on config.
func (a *MDNSAdvertiser) serverOptions() []zeroconf.ServerOption {
	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}
	if a.config.ConnectionFactory != nil {
		opts = append(opts, zeroconf.WithServerConnFactory(a.config.ConnectionFactory))
	}
	if a.config.InterfaceProvider != nil {
		opts = append(opts, zeroconf.WithServerInterfaceProvider(a.config.InterfaceProvider))
	}
	return opts
}

// AdvertiseCompanion starts advertising the companion bridge.
func (a *MDNSAdvertiser) AdvertiseCompanion(ctx context.Context, info *CompanionInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.companionServer != nil {
		a.companionServer.Shutdown()
		a.companionServer = nil
	}

	if a.config.Quiet {
		return nil
	}

	txtRecords := EncodeCompanionTXT(info)
	txtStrings := TXTRecordsToStrings(txtRecords)

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	ifaces := a.getInterfaces()
	opts := a.serverOptions()

	server, err := zeroconf.Register(
		info.InstanceName(),
		ServiceTypeCompanion,
		Domain,
		port,
		txtStrings,
		ifaces,
		opts...,
	)
	if err != nil {
		return err
	}

	a.companionServer = server
	return nil
}

// UpdateCompanion updates TXT records for the advertised companion bridge.
func (a *MDNSAdvertiser) UpdateCompanion(info *CompanionInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.Quiet {
		return nil
	}
	if a.companionServer == nil {
		return ErrNotFound
	}

	txtRecords := EncodeCompanionTXT(info)
	txtStrings := TXTRecordsToStrings(txtRecords)
	a.companionServer.SetText(txtStrings)

	return nil
}

// StopCompanion stops advertising the companion bridge.
func (a *MDNSAdvertiser) StopCompanion() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.companionServer != nil {
		a.companionServer.Shutdown()
		a.companionServer = nil
	}
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	_ = a.StopCompanion()
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{config: config}, nil
}

// BrowseCompanions searches for companion bridges. Services are aggregated
// by instance name - addresses from multiple interfaces are combined into
// a single entry. Both returned channels close when ctx is cancelled.
func (b *MDNSBrowser) BrowseCompanions(ctx context.Context) (added, removed <-chan *CompanionService, err error) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	prev := b.cancel
	b.cancel = func() {
		if prev != nil {
			prev()
		}
		cancel()
	}
	b.mu.Unlock()

	addedCh := make(chan *CompanionService)
	removedCh := make(chan *CompanionService)

	entries := make(chan *zeroconf.ServiceEntry)
	removedEntries := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(addedCh)
		defer close(removedCh)

		services := make(map[string]*CompanionService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := b.entryToCompanion(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case addedCh <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removedEntries:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
						select {
						case removedCh <- existing:
						case <-ctx.Done():
							return
						}
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeCompanion, Domain, entries, removedEntries, opts...)
	}()

	return addedCh, removedCh, nil
}

// FindByPubkeyPrefix searches for a specific companion bridge.
func (b *MDNSBrowser) FindByPubkeyPrefix(ctx context.Context, pubkeyPrefix string) (*CompanionService, error) {
	added, _, err := b.BrowseCompanions(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-added:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.PubkeyPrefix == pubkeyPrefix {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	if b.config.ConnectionFactory != nil {
		opts = append(opts, zeroconf.WithClientConnFactory(b.config.ConnectionFactory))
	}

	if b.config.InterfaceProvider != nil {
		opts = append(opts, zeroconf.WithClientInterfaceProvider(b.config.InterfaceProvider))
	}

	return opts
}

// entryToCompanion converts a zeroconf entry to CompanionService.
func (b *MDNSBrowser) entryToCompanion(entry *zeroconf.ServiceEntry) *CompanionService {
	txt := StringsToTXTRecords(entry.Text)
	svc, err := DecodeCompanionTXT(txt)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	svc.InstanceName = entry.Instance
	svc.Host = entry.HostName
	svc.Port = uint16(entry.Port)
	svc.Addresses = addrs

	return svc
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes addresses from a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
