package wire

import (
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}
	return b
}

func TestAppStartReferenceBytes(t *testing.T) {
	got := AppStart("MCore")
	want := mustHex(t, "01032020202020204d436f7265")
	assertBytesEqual(t, got, want)
}

func TestAppStartTruncatesLongClientID(t *testing.T) {
	got := AppStart("LongClientName")
	if len(got) != 13 {
		t.Fatalf("len = %d, want 13", len(got))
	}
	want := mustHex(t, "01032020202020204c6f6e6743")
	assertBytesEqual(t, got, want)
}

func TestAppStartDefaultsClientID(t *testing.T) {
	got := AppStart("")
	want := AppStart(DefaultClientID)
	assertBytesEqual(t, got, want)
}

func TestSetTimeReferenceBytes(t *testing.T) {
	got := SetTime(1704067200)
	want := mustHex(t, "0680009265")
	assertBytesEqual(t, got, want)
}

func TestSetNameNoPadding(t *testing.T) {
	got := SetName("Repeater1")
	want := append([]byte{byte(CmdSetName)}, []byte("Repeater1")...)
	assertBytesEqual(t, got, want)
}

func TestSetCoordinatesReferenceBytes(t *testing.T) {
	got := SetCoordinates(37.7749, -122.4194)
	if got[0] != byte(CmdSetCoords) {
		t.Fatalf("command byte = 0x%02x, want 0x%02x", got[0], CmdSetCoords)
	}
	if len(got) != 1+4+4+4 {
		t.Fatalf("len = %d, want 13", len(got))
	}
	lat := readInt32LEForTest(got[1:5])
	lon := readInt32LEForTest(got[5:9])
	if lat != 37774900 {
		t.Errorf("lat = %d, want 37774900", lat)
	}
	if lon != -122419400 {
		t.Errorf("lon = %d, want -122419400", lon)
	}
	for _, b := range got[9:13] {
		if b != 0 {
			t.Errorf("trailing reserved bytes not zero: %v", got[9:13])
			break
		}
	}
}

func readInt32LEForTest(b []byte) int32 {
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func TestSendMessageLayout(t *testing.T) {
	to := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	got := SendMessage(to, "Hello", 1704067200, 0)

	want := []byte{byte(CmdSendTxtMsg), 0x00, 0x00}
	want = append(want, mustHex(t, "80009265")...)
	want = append(want, to[:]...)
	want = append(want, []byte("Hello")...)
	assertBytesEqual(t, got, want)
}

func TestSendChannelMessageLayout(t *testing.T) {
	got := SendChannelMessage(0, "hi all", 1704067200)
	want := []byte{byte(CmdSendChannelMsg), 0, 0, 0}
	want = append(want, mustHex(t, "80009265")...)
	want = append(want, []byte("hi all")...)
	assertBytesEqual(t, got, want)
}

func TestSendAdvertisement(t *testing.T) {
	assertBytesEqual(t, SendAdvertisement(false), []byte{byte(CmdAdvert)})
	assertBytesEqual(t, SendAdvertisement(true), []byte{byte(CmdAdvert), 0x01})
}

func TestSetChannelLayout(t *testing.T) {
	var secret [16]byte
	for i := range secret {
		secret[i] = byte(i)
	}
	got := SetChannel(0, "General", secret)
	if len(got) != 1+1+32+16 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	if got[0] != byte(CmdSetChannel) || got[1] != 0 {
		t.Fatalf("header bytes wrong: %v", got[:2])
	}
	name := got[2:34]
	if string(name[:7]) != "General" {
		t.Errorf("name prefix = %q, want General", name[:7])
	}
	for _, b := range name[7:] {
		if b != 0 {
			t.Fatalf("name field not zero-padded: %v", name)
		}
	}
	assertBytesEqual(t, got[34:50], secret[:])
}

func TestGetContactsEncodesSince(t *testing.T) {
	got := GetContacts(1704067200)
	want := append([]byte{byte(CmdGetContacts)}, mustHex(t, "80009265")...)
	assertBytesEqual(t, got, want)
}

func assertBytesEqual(t *testing.T, got, want []byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d bytes (% x), want %d bytes (% x)", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02x, want 0x%02x (got=% x want=% x)", i, got[i], want[i], got, want)
		}
	}
}
