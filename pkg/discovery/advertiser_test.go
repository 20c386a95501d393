package discovery_test

import (
	"context"
	"testing"

	"github.com/mikewren/PocketMesh-sub009/pkg/discovery"
)

// fakeAdvertiser is an in-memory Advertiser double for DiscoveryManager tests.
type fakeAdvertiser struct {
	advertised *discovery.CompanionInfo
	updates    int
	stopped    bool
	stopAllN   int
}

func (f *fakeAdvertiser) AdvertiseCompanion(ctx context.Context, info *discovery.CompanionInfo) error {
	f.advertised = info
	f.stopped = false
	return nil
}

func (f *fakeAdvertiser) UpdateCompanion(info *discovery.CompanionInfo) error {
	f.advertised = info
	f.updates++
	return nil
}

func (f *fakeAdvertiser) StopCompanion() error {
	f.stopped = true
	return nil
}

func (f *fakeAdvertiser) StopAll() {
	f.stopAllN++
	f.stopped = true
}

var _ discovery.Advertiser = (*fakeAdvertiser)(nil)

func TestDiscoveryManagerStartAdvertising(t *testing.T) {
	fa := &fakeAdvertiser{}
	mgr := discovery.NewDiscoveryManager(fa)
	mgr.SetCompanionInfo(&discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"})

	var transitions [][2]discovery.DiscoveryState
	mgr.OnStateChange(func(old, new discovery.DiscoveryState) {
		transitions = append(transitions, [2]discovery.DiscoveryState{old, new})
	})

	if err := mgr.StartAdvertising(context.Background()); err != nil {
		t.Fatalf("StartAdvertising error: %v", err)
	}
	if !mgr.IsAdvertising() {
		t.Error("expected IsAdvertising() true after start")
	}
	if fa.advertised == nil {
		t.Error("expected advertiser to receive companion info")
	}
	if len(transitions) != 1 || transitions[0][1] != discovery.StateAdvertising {
		t.Errorf("unexpected transitions: %v", transitions)
	}

	// Idempotent restart shouldn't fire another transition.
	if err := mgr.StartAdvertising(context.Background()); err != nil {
		t.Fatalf("second StartAdvertising error: %v", err)
	}
	if len(transitions) != 1 {
		t.Errorf("expected no additional transition on idempotent start, got %v", transitions)
	}
}

func TestDiscoveryManagerStartAdvertisingRequiresInfo(t *testing.T) {
	mgr := discovery.NewDiscoveryManager(&fakeAdvertiser{})
	if err := mgr.StartAdvertising(context.Background()); err == nil {
		t.Error("expected error starting advertising with no companion info set")
	}
}

func TestDiscoveryManagerUpdateCompanionInfo(t *testing.T) {
	fa := &fakeAdvertiser{}
	mgr := discovery.NewDiscoveryManager(fa)
	info := &discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"}
	mgr.SetCompanionInfo(info)

	if err := mgr.StartAdvertising(context.Background()); err != nil {
		t.Fatal(err)
	}

	updated := &discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1-renamed"}
	if err := mgr.UpdateCompanionInfo(updated); err != nil {
		t.Fatalf("UpdateCompanionInfo error: %v", err)
	}
	if fa.updates != 1 {
		t.Errorf("expected 1 update call, got %d", fa.updates)
	}
}

func TestDiscoveryManagerStopAdvertising(t *testing.T) {
	fa := &fakeAdvertiser{}
	mgr := discovery.NewDiscoveryManager(fa)
	mgr.SetCompanionInfo(&discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"})

	if err := mgr.StartAdvertising(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := mgr.StopAdvertising(); err != nil {
		t.Fatalf("StopAdvertising error: %v", err)
	}
	if mgr.IsAdvertising() {
		t.Error("expected IsAdvertising() false after stop")
	}
	if !fa.stopped {
		t.Error("expected underlying advertiser to be stopped")
	}
}

func TestDiscoveryManagerStop(t *testing.T) {
	fa := &fakeAdvertiser{}
	mgr := discovery.NewDiscoveryManager(fa)
	mgr.SetCompanionInfo(&discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"})
	_ = mgr.StartAdvertising(context.Background())

	mgr.Stop()
	if fa.stopAllN != 1 {
		t.Errorf("expected StopAll called once, got %d", fa.stopAllN)
	}
	if mgr.State() != discovery.StateUnregistered {
		t.Errorf("State() = %v, want StateUnregistered", mgr.State())
	}
}
