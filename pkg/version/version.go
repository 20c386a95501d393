// Package version tracks MeshCore's companion wire-format generations
// (v1-v4) and the per-frame manifests describing which fields each
// generation guarantees.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the frame-format version this library builds and parses by
// default (spec.md's ContactMessage/ChannelMessage v3 form).
const Current FrameVersion = 3

// MinSupported and MaxSupported bound the wire-format generations this
// library understands. spec.md's non-goals explicitly exclude "wire-format
// evolution beyond protocol versions v1-v4".
const (
	MinSupported FrameVersion = 1
	MaxSupported FrameVersion = 4
)

// FrameVersion is a MeshCore companion wire-format generation.
type FrameVersion uint8

// Parse parses a version string in either "v3" or "3" form.
func Parse(s string) (FrameVersion, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "v")
	n, err := strconv.ParseUint(trimmed, 10, 8)
	if err != nil || trimmed == "" {
		return 0, fmt.Errorf("invalid frame version %q: expected v1-v4", s)
	}
	return FrameVersion(n), nil
}

// String returns the version as "v3".
func (v FrameVersion) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// Supported reports whether v falls within MinSupported..MaxSupported.
func (v FrameVersion) Supported() bool {
	return v >= MinSupported && v <= MaxSupported
}

// Compatible reports whether two frame versions can interoperate.
// MeshCore frames are forward-readable within a generation but not
// across one, so compatibility here is exact equality rather than a
// major/minor split.
func (v FrameVersion) Compatible(other FrameVersion) bool {
	return v == other
}
