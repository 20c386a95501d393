package lpp

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestTemperatureRoundTrip(t *testing.T) {
	buf := Encode(nil, Record{Channel: 1, Type: TypeTemperature, Value: 21.4})
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if !almostEqual(got[0].Value, 21.4, 0.1) {
		t.Errorf("value = %v, want ~21.4", got[0].Value)
	}
}

func TestHumidityRoundTrip(t *testing.T) {
	buf := Encode(nil, Record{Channel: 2, Type: TypeHumidity, Value: 55.5})
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if !almostEqual(got[0].Value, 55.5, 0.5) {
		t.Errorf("value = %v, want ~55.5", got[0].Value)
	}
}

func TestGPSRoundTrip(t *testing.T) {
	buf := Encode(nil, Record{Channel: 3, Type: TypeGPS, Lat: 37.7749, Lon: -122.4194, Alt: 15.5})
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	r := got[0]
	if !almostEqual(r.Lat, 37.7749, 1e-4) {
		t.Errorf("lat = %v, want ~37.7749", r.Lat)
	}
	if !almostEqual(r.Lon, -122.4194, 1e-4) {
		t.Errorf("lon = %v, want ~-122.4194", r.Lon)
	}
	if !almostEqual(r.Alt, 15.5, 0.01) {
		t.Errorf("alt = %v, want ~15.5", r.Alt)
	}
}

func TestAccelerometerRoundTrip(t *testing.T) {
	buf := Encode(nil, Record{Channel: 4, Type: TypeAccelerometer, X: 0.981, Y: -0.123, Z: 1.0})
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	r := got[0]
	if !almostEqual(r.X, 0.981, 0.001) || !almostEqual(r.Y, -0.123, 0.001) || !almostEqual(r.Z, 1.0, 0.001) {
		t.Errorf("accel = %+v", r)
	}
}

func TestMultipleRecordsInOnePayload(t *testing.T) {
	var buf []byte
	buf = Encode(buf, Record{Channel: 1, Type: TypeTemperature, Value: 20.0})
	buf = Encode(buf, Record{Channel: 2, Type: TypeHumidity, Value: 40.0})
	got := Decode(buf)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
}

func TestDecodeStopsAtUnknownType(t *testing.T) {
	buf := Encode(nil, Record{Channel: 1, Type: TypeTemperature, Value: 20.0})
	buf = append(buf, 9, 0xFF, 1, 2, 3)
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1 (should stop at unknown type)", len(got))
	}
}

func TestDecodeStopsAtTruncatedRecord(t *testing.T) {
	buf := []byte{1, byte(TypeTemperature), 0x00} // declares 2-byte value, only 1 present
	got := Decode(buf)
	if len(got) != 0 {
		t.Fatalf("got %d records, want 0 for truncated record", len(got))
	}
}

func TestVoltageRoundTrip(t *testing.T) {
	buf := Encode(nil, Record{Channel: 5, Type: TypeVoltage, Value: 3.87})
	got := Decode(buf)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if !almostEqual(got[0].Value, 3.87, 0.01) {
		t.Errorf("value = %v, want ~3.87", got[0].Value)
	}
}
