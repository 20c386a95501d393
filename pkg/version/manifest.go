package version

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// FrameManifest describes what a MeshCore wire-format generation
// guarantees: which response/push frames exist and which of their fields
// are mandatory versus optional in that generation.
type FrameManifest struct {
	Version     string                `yaml:"version"`
	Description string                `yaml:"description"`
	Frames      map[string]FrameEntry `yaml:"frames"`
}

// FrameEntry describes a single frame within a manifest.
type FrameEntry struct {
	Code      uint8     `yaml:"code"`
	Revision  uint16    `yaml:"revision"`
	Mandatory bool      `yaml:"mandatory"`
	Fields    FieldSpec `yaml:"fields"`
}

// FieldSpec lists the mandatory and optional fields of a frame.
type FieldSpec struct {
	Mandatory []FieldDef `yaml:"mandatory"`
	Optional  []FieldDef `yaml:"optional"`
}

// FieldDef is a named field with its byte offset within the frame.
type FieldDef struct {
	Offset uint16 `yaml:"offset"`
	Name   string `yaml:"name"`
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*FrameManifest)
)

// LoadManifest loads the manifest for a frame version (e.g. "v3").
func LoadManifest(ver FrameVersion) (*FrameManifest, error) {
	key := ver.String()

	cacheMu.RLock()
	if m, ok := cache[key]; ok {
		cacheMu.RUnlock()
		return m, nil
	}
	cacheMu.RUnlock()

	data, err := manifestFS.ReadFile("manifests/" + key + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("frame manifest %q not found: %w", key, err)
	}

	var m FrameManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing frame manifest %q: %w", key, err)
	}

	cacheMu.Lock()
	cache[key] = &m
	cacheMu.Unlock()

	return &m, nil
}

// LoadCurrentManifest loads the manifest for Current.
func LoadCurrentManifest() (*FrameManifest, error) {
	return LoadManifest(Current)
}

// AvailableManifests returns the versions of all embedded manifests,
// sorted.
func AvailableManifests() ([]string, error) {
	entries, err := manifestFS.ReadDir("manifests")
	if err != nil {
		return nil, fmt.Errorf("reading manifests directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			versions = append(versions, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// MandatoryFrames returns the names of all mandatory frames, sorted.
func (m *FrameManifest) MandatoryFrames() []string {
	var out []string
	for name, f := range m.Frames {
		if f.Mandatory {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// FrameByCode looks up a frame by its wire code.
func (m *FrameManifest) FrameByCode(code uint8) (string, *FrameEntry, bool) {
	for name, f := range m.Frames {
		if f.Code == code {
			return name, &f, true
		}
	}
	return "", nil, false
}

// DeviceFrameSupport describes what a connected device's firmware
// actually implements, as reported by its SELF_INFO / DEVICE_QUERY
// replies.
type DeviceFrameSupport struct {
	FrameVersion string
	Frames       map[string]FrameCapability
}

// FrameCapability describes a single frame's actual capabilities.
type FrameCapability struct {
	Revision uint16
	Fields   []uint16
}

// ValidationResult holds the outcome of validating a device against a
// manifest.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateDevice checks whether a device's reported frame support
// satisfies a manifest's mandatory frames and fields.
func ValidateDevice(m *FrameManifest, device DeviceFrameSupport) ValidationResult {
	var result ValidationResult

	for frameName, frameSpec := range m.Frames {
		devFrame, present := device.Frames[frameName]

		if !present {
			if frameSpec.Mandatory {
				result.Errors = append(result.Errors,
					fmt.Sprintf("mandatory frame %s missing", frameName))
			}
			continue
		}

		if devFrame.Revision != frameSpec.Revision {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("frame %s revision mismatch: device has %d, manifest expects %d",
					frameName, devFrame.Revision, frameSpec.Revision))
		}

		fieldSet := makeUint16Set(devFrame.Fields)
		for _, field := range frameSpec.Fields.Mandatory {
			if !fieldSet[field.Offset] {
				result.Errors = append(result.Errors,
					fmt.Sprintf("frame %s missing mandatory field %s (offset %d)",
						frameName, field.Name, field.Offset))
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func makeUint16Set(ids []uint16) map[uint16]bool {
	s := make(map[uint16]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
