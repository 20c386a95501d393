package discovery_test

import (
	"testing"

	"github.com/mikewren/PocketMesh-sub009/pkg/discovery"
)

func TestPubkeyPrefixHexRoundTrip(t *testing.T) {
	prefix := [6]byte{0xa1, 0xb2, 0xc3, 0xd4, 0xe5, 0xf6}

	hexStr := discovery.PubkeyPrefixHex(prefix)
	if hexStr != "a1b2c3d4e5f6" {
		t.Errorf("PubkeyPrefixHex() = %q, want %q", hexStr, "a1b2c3d4e5f6")
	}

	back, err := discovery.ParsePubkeyPrefixHex(hexStr)
	if err != nil {
		t.Fatalf("ParsePubkeyPrefixHex error: %v", err)
	}
	if back != prefix {
		t.Errorf("ParsePubkeyPrefixHex() = %x, want %x", back, prefix)
	}
}

func TestParsePubkeyPrefixHexInvalid(t *testing.T) {
	if _, err := discovery.ParsePubkeyPrefixHex("tooshort"); err == nil {
		t.Error("expected error for short hex string")
	}
	if _, err := discovery.ParsePubkeyPrefixHex("zzzzzzzzzzzz"); err == nil {
		t.Error("expected error for non-hex string")
	}
}
