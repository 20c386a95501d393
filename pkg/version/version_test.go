package version

import "testing"

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  FrameVersion
	}{
		{"v1", 1},
		{"v3", 3},
		{"3", 3},
		{"V4", 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{"", "v", "abc", "v1.0", "v-1"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestString(t *testing.T) {
	v, err := Parse("v3")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "v3" {
		t.Errorf("String() = %q, want %q", v.String(), "v3")
	}
}

func TestSupported(t *testing.T) {
	for v := FrameVersion(1); v <= 4; v++ {
		if !v.Supported() {
			t.Errorf("%s.Supported() = false, want true", v)
		}
	}
	if FrameVersion(0).Supported() {
		t.Error("v0.Supported() = true, want false")
	}
	if FrameVersion(5).Supported() {
		t.Error("v5.Supported() = true, want false")
	}
}

func TestCompatible(t *testing.T) {
	if !Current.Compatible(Current) {
		t.Error("Current should be compatible with itself")
	}
	if FrameVersion(1).Compatible(FrameVersion(2)) {
		t.Error("v1 should NOT be compatible with v2")
	}
}

func TestCurrent(t *testing.T) {
	if Current != 3 {
		t.Errorf("Current = %s, want v3", Current)
	}
	if !Current.Supported() {
		t.Error("Current must be Supported()")
	}
}
