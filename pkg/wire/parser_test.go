package wire

import "testing"

func TestParseErrorShortPayload(t *testing.T) {
	ev := Parse(RespError, nil, 6)
	if ev.Kind != EventParseFailure {
		t.Fatalf("Kind = %v, want EventParseFailure", ev.Kind)
	}
}

func TestParseErrorCode(t *testing.T) {
	ev := Parse(RespError, []byte{10}, 6)
	if ev.Kind != EventError || ev.ErrorCode != 10 {
		t.Fatalf("got %+v, want EventError(10)", ev)
	}
}

func TestParseStatusResponsePushReferenceScenario(t *testing.T) {
	payload := make([]byte, 59)
	copy(payload[1:7], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	copy(payload[7:9], []byte{0xe8, 0x03}) // 1000 LE
	copy(payload[11:13], []byte{0x92, 0xff}) // -110 LE
	copy(payload[13:15], []byte{0xab, 0xff}) // -85 LE

	ev := ParseStatusResponsePush(payload)
	if ev.Kind != EventStatusResponse {
		t.Fatalf("Kind = %v, want EventStatusResponse (reason=%s)", ev.Kind, ev.FailureReason)
	}
	sr := ev.StatusResponse
	want := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if sr.PubkeyPrefix != want {
		t.Errorf("pubkeyPrefix = % x, want % x", sr.PubkeyPrefix, want)
	}
	if sr.BatteryMilliV != 1000 {
		t.Errorf("battery = %d, want 1000", sr.BatteryMilliV)
	}
	if sr.NoiseFloor != -110 {
		t.Errorf("noiseFloor = %d, want -110", sr.NoiseFloor)
	}
	if sr.LastRSSI != -85 {
		t.Errorf("lastRSSI = %d, want -85", sr.LastRSSI)
	}
}

func TestParseStatusResponseShortPayloadFails(t *testing.T) {
	ev := ParseStatusResponsePush(make([]byte, 50))
	if ev.Kind != EventParseFailure {
		t.Fatalf("Kind = %v, want EventParseFailure for 50-byte payload", ev.Kind)
	}
}

// TestParseStatusResponsePushRejectsMissingRxAirtime covers the 55-58 byte
// gap: rxAirtime is mandatory in the push form (spec.md: total >= 59
// bytes), unlike the binary-response form where it's optional. A payload
// with the fixed fields but no trailing rxAirtime must fail to parse, not
// silently zero-fill.
func TestParseStatusResponsePushRejectsMissingRxAirtime(t *testing.T) {
	for length := 55; length < 59; length++ {
		ev := ParseStatusResponsePush(make([]byte, length))
		if ev.Kind != EventParseFailure {
			t.Errorf("length %d: Kind = %v, want EventParseFailure", length, ev.Kind)
		}
	}
}

func TestParseStatusResponseBinaryOmitsReservedAndPrefix(t *testing.T) {
	payload := make([]byte, 48)
	copy(payload[0:2], []byte{0xe8, 0x03}) // battery 1000
	ev := ParseStatusResponseBinary(payload)
	if ev.Kind != EventStatusResponse {
		t.Fatalf("Kind = %v, want EventStatusResponse", ev.Kind)
	}
	if ev.StatusResponse.BatteryMilliV != 1000 {
		t.Errorf("battery = %d, want 1000", ev.StatusResponse.BatteryMilliV)
	}
	var zero [6]byte
	if ev.StatusResponse.PubkeyPrefix != zero {
		t.Errorf("binary form should not populate pubkey prefix, got % x", ev.StatusResponse.PubkeyPrefix)
	}
}

func TestParseContactMessageSNRSentinel(t *testing.T) {
	payload := make([]byte, contactMessageMinLen)
	sentinel := int8(snrSentinel)
	payload[0] = byte(sentinel)
	ev := Parse(RespContactMsgRecv, payload, 6)
	if ev.Kind != EventContactMessageReceived {
		t.Fatalf("Kind = %v, want EventContactMessageReceived", ev.Kind)
	}
	if ev.ContactMessage.SNR != nil {
		t.Errorf("SNR = %v, want nil for sentinel", *ev.ContactMessage.SNR)
	}
}

func TestParseContactMessageDecodesText(t *testing.T) {
	payload := make([]byte, contactMessageMinLen)
	payload[0] = 40 // snr raw -> 10.0 dB
	payload = append(payload, []byte("hello mesh")...)
	ev := Parse(RespContactMsgRecv, payload, 6)
	cm := ev.ContactMessage
	if cm == nil {
		t.Fatalf("expected ContactMessage, reason=%s", ev.FailureReason)
	}
	if cm.SNR == nil || *cm.SNR != 10.0 {
		t.Errorf("SNR = %v, want 10.0", cm.SNR)
	}
	if cm.Text != "hello mesh" {
		t.Errorf("text = %q, want %q", cm.Text, "hello mesh")
	}
}

func TestParseNeighboursResponseWidths(t *testing.T) {
	for _, prefixLen := range []int{4, 6} {
		payload := []byte{1, 0, 1, 0} // total=1, results=1
		prefix := make([]byte, prefixLen)
		for i := range prefix {
			prefix[i] = byte(0x10 + i)
		}
		payload = append(payload, prefix...)
		payload = append(payload, 0x0A, 0, 0, 0) // secsAgo=10
		snrRaw := int8(-40)
		payload = append(payload, byte(snrRaw)) // snr raw -> -10.0 dB

		ev := ParseNeighboursResponse(payload, prefixLen)
		if ev.Kind != EventNeighboursResponse {
			t.Fatalf("Kind = %v, want EventNeighboursResponse", ev.Kind)
		}
		if len(ev.Neighbours) != 1 {
			t.Fatalf("prefixLen=%d: got %d neighbours, want 1", prefixLen, len(ev.Neighbours))
		}
		n := ev.Neighbours[0]
		if n.SecsAgo != 10 {
			t.Errorf("secsAgo = %d, want 10", n.SecsAgo)
		}
		if n.SNR != -10.0 {
			t.Errorf("snr = %v, want -10.0", n.SNR)
		}
	}
}

func TestParseACLResponseSkipsZeroPrefixes(t *testing.T) {
	payload := make([]byte, 0, 14)
	payload = append(payload, make([]byte, 6)...) // all-zero prefix, skipped
	payload = append(payload, 0x03)
	payload = append(payload, []byte{1, 2, 3, 4, 5, 6}...)
	payload = append(payload, 0x07)

	ev := ParseACLResponse(payload)
	if len(ev.ACLEntries) != 1 {
		t.Fatalf("got %d entries, want 1", len(ev.ACLEntries))
	}
	if ev.ACLEntries[0].Permissions != 0x07 {
		t.Errorf("permissions = %d, want 7", ev.ACLEntries[0].Permissions)
	}
}

func TestParseMMAResponseTemperatureAndHumidity(t *testing.T) {
	payload := []byte{0, mmaTypeTemperature, 0x00, 0xC8, 0x01, 0x2C, 0x00, 0xFA} // 20.0, 30.0, 25.0
	payload = append(payload, 1, mmaTypeHumidity, 80, 120, 100)                 // 40.0, 60.0, 50.0

	ev := ParseMMAResponse(payload)
	if len(ev.MMAEntries) != 2 {
		t.Fatalf("got %d entries, want 2", len(ev.MMAEntries))
	}
	temp := ev.MMAEntries[0]
	if temp.Min != 20.0 || temp.Max != 30.0 || temp.Avg != 25.0 {
		t.Errorf("temperature entry = %+v", temp)
	}
	hum := ev.MMAEntries[1]
	if hum.Min != 40.0 || hum.Max != 60.0 || hum.Avg != 50.0 {
		t.Errorf("humidity entry = %+v", hum)
	}
}

func TestParseMMAResponseStopsOnUnknownType(t *testing.T) {
	payload := []byte{0, mmaTypeTemperature, 0, 200, 1, 44, 0, 250}
	payload = append(payload, 1, 0xFF, 9, 9, 9)
	ev := ParseMMAResponse(payload)
	if len(ev.MMAEntries) != 1 {
		t.Fatalf("got %d entries, want 1 (unknown type should stop decoding)", len(ev.MMAEntries))
	}
}

func TestParseCustomVars(t *testing.T) {
	ev := Parse(RespCustomVars, []byte("k1:v1,k2:v2"), 6)
	if ev.CustomVars["k1"] != "v1" || ev.CustomVars["k2"] != "v2" {
		t.Errorf("got %+v", ev.CustomVars)
	}
}
