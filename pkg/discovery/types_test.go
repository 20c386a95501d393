package discovery_test

import (
	"testing"

	"github.com/mikewren/PocketMesh-sub009/pkg/discovery"
)

func TestCompanionInfoValidate(t *testing.T) {
	info := &discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"}
	if err := info.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	bad := &discovery.CompanionInfo{PubkeyPrefix: "short", NodeName: "relay-1"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for short pubkey prefix")
	}

	noName := &discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6"}
	if err := noName.Validate(); err == nil {
		t.Error("expected error for missing node name")
	}
}

func TestCompanionInfoInstanceName(t *testing.T) {
	info := &discovery.CompanionInfo{PubkeyPrefix: "a1b2c3d4e5f6", NodeName: "relay-1"}
	want := "MeshCore-a1b2c3d4e5f6"
	if got := info.InstanceName(); got != want {
		t.Errorf("InstanceName() = %q, want %q", got, want)
	}
}

func TestDiscoveryStateString(t *testing.T) {
	if discovery.StateUnregistered.String() != "UNREGISTERED" {
		t.Error("StateUnregistered.String() mismatch")
	}
	if discovery.StateAdvertising.String() != "ADVERTISING" {
		t.Error("StateAdvertising.String() mismatch")
	}
	if discovery.DiscoveryState(99).String() != "UNKNOWN" {
		t.Error("unknown state should stringify to UNKNOWN")
	}
}
