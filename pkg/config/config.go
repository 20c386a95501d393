package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mikewren/PocketMesh-sub009/pkg/messaging"
	"github.com/mikewren/PocketMesh-sub009/pkg/transport"
)

// TransportKind selects which concrete transport a companion host connects
// over.
type TransportKind string

const (
	TransportBLE TransportKind = "ble"
	TransportTCP TransportKind = "tcp"
)

// ErrUnknownTransport is returned when Transport isn't "ble" or "tcp".
var ErrUnknownTransport = errors.New("config: transport must be \"ble\" or \"tcp\"")

// ErrMissingAddress is returned when Transport is "tcp" but TCP.Address is empty.
var ErrMissingAddress = errors.New("config: tcp.address is required when transport is \"tcp\"")

// ErrMissingDeviceID is returned when Transport is "ble" but BLE.DeviceID is empty.
var ErrMissingDeviceID = errors.New("config: ble.device_id is required when transport is \"ble\"")

// TCPSettings configures the TCP bridge transport. Mirrors
// transport.TCPConfig's tunable fields.
type TCPSettings struct {
	Address        string        `yaml:"address"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	MaxMessageSize uint32        `yaml:"max_message_size"`
}

// BLESettings configures BLE peripheral selection. DeviceID is opaque to
// this module - the application uses it to locate and construct the
// transport.Peripheral passed to transport.NewBLETransport.
type BLESettings struct {
	DeviceID    string        `yaml:"device_id"`
	WritePacing time.Duration `yaml:"write_pacing"`
}

// ReconnectSettings holds reconnect backoff tuning. Its defaults mirror
// the transport.InitialBackoff/MaxBackoff/BackoffMultiplier constants; no
// package in this module reads these values, and the transports do not
// redial.
type ReconnectSettings struct {
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier"`
}

// MessagingSettings tunes the reliability layer. Mirrors messaging.Config
// and messaging.SendParams.
type MessagingSettings struct {
	MaxAttempts      int           `yaml:"max_attempts"`
	FloodAfter       int           `yaml:"flood_after"`
	MaxFloodAttempts int           `yaml:"max_flood_attempts"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	DirectFloor      time.Duration `yaml:"direct_floor"`
	PerHopTimeout    time.Duration `yaml:"per_hop_timeout"`
	FloodTimeout     time.Duration `yaml:"flood_timeout"`
}

// SessionSettings tunes session-layer RPC timeouts.
type SessionSettings struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SyncSettings toggles which sync phases run. All default to enabled;
// set a phase to false to skip it (e.g. a read-only client that never
// needs the messages phase).
type SyncSettings struct {
	Contacts *bool `yaml:"contacts"`
	Channels *bool `yaml:"channels"`
	Messages *bool `yaml:"messages"`
}

// ContactsEnabled reports whether the contacts phase should run.
func (s SyncSettings) ContactsEnabled() bool { return boolOrDefault(s.Contacts, true) }

// ChannelsEnabled reports whether the channels phase should run.
func (s SyncSettings) ChannelsEnabled() bool { return boolOrDefault(s.Channels, true) }

// MessagesEnabled reports whether the messages phase should run.
func (s SyncSettings) MessagesEnabled() bool { return boolOrDefault(s.Messages, true) }

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Config is a companion host's full configuration.
type Config struct {
	// ClientID identifies this host to firmware in the APP_START
	// handshake (spec §4.2). Defaults to wire.DefaultClientID ("MCore").
	ClientID string `yaml:"client_id"`

	// Transport selects "ble" or "tcp".
	Transport TransportKind `yaml:"transport"`

	TCP       TCPSettings       `yaml:"tcp"`
	BLE       BLESettings       `yaml:"ble"`
	Reconnect ReconnectSettings `yaml:"reconnect"`
	Messaging MessagingSettings `yaml:"messaging"`
	Session   SessionSettings   `yaml:"session"`
	Sync      SyncSettings      `yaml:"sync"`

	// PersistencePath is the path to the JSON sync-cursor/contact store
	// (pkg/persistence.FileStore).
	PersistencePath string `yaml:"persistence_path"`

	// LogFile is the path protocol-log events are appended to
	// (pkg/log.FileLogger). Empty disables file logging.
	LogFile string `yaml:"log_file"`
}

// Load reads and parses a companion host configuration file, applying
// defaults and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a companion host configuration from YAML bytes, applying
// defaults and validating the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.ClientID == "" {
		c.ClientID = "MCore"
	}
	if c.Transport == "" {
		c.Transport = TransportTCP
	}

	if c.TCP.DialTimeout <= 0 {
		c.TCP.DialTimeout = 10 * time.Second
	}
	if c.TCP.MaxMessageSize == 0 {
		c.TCP.MaxMessageSize = transport.DefaultMaxMessageSize
	}

	if c.BLE.WritePacing <= 0 {
		c.BLE.WritePacing = transport.DefaultWritePacing
	}

	if c.Reconnect.InitialBackoff <= 0 {
		c.Reconnect.InitialBackoff = transport.InitialBackoff
	}
	if c.Reconnect.MaxBackoff <= 0 {
		c.Reconnect.MaxBackoff = transport.MaxBackoff
	}
	if c.Reconnect.Multiplier <= 0 {
		c.Reconnect.Multiplier = transport.BackoffMultiplier
	}

	if c.Messaging.MaxAttempts <= 0 {
		c.Messaging.MaxAttempts = messaging.DefaultMaxAttempts
	}
	if c.Messaging.FloodAfter <= 0 {
		c.Messaging.FloodAfter = messaging.DefaultFloodAfter
	}
	if c.Messaging.MaxFloodAttempts <= 0 {
		c.Messaging.MaxFloodAttempts = messaging.DefaultMaxFloodAttempts
	}
	if c.Messaging.SweepInterval <= 0 {
		c.Messaging.SweepInterval = messaging.DefaultSweepInterval
	}
	if c.Messaging.DirectFloor <= 0 {
		c.Messaging.DirectFloor = messaging.DefaultDirectFloor
	}
	if c.Messaging.PerHopTimeout <= 0 {
		c.Messaging.PerHopTimeout = messaging.DefaultPerHopTimeout
	}
	if c.Messaging.FloodTimeout <= 0 {
		c.Messaging.FloodTimeout = messaging.DefaultFloodTimeout
	}

	if c.Session.RequestTimeout <= 0 {
		c.Session.RequestTimeout = 5 * time.Second
	}

	if c.PersistencePath == "" {
		c.PersistencePath = "meshcore-state.json"
	}
}

// Validate checks the configuration for consistency beyond what defaulting
// can repair.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportBLE:
		if c.BLE.DeviceID == "" {
			return ErrMissingDeviceID
		}
	case TransportTCP:
		if c.TCP.Address == "" {
			return ErrMissingAddress
		}
	default:
		return ErrUnknownTransport
	}
	return nil
}

// TransportConfig returns the transport.TCPConfig implied by this
// configuration. Only meaningful when Transport is TransportTCP.
func (c *Config) TransportConfig() transport.TCPConfig {
	return transport.TCPConfig{
		Address:        c.TCP.Address,
		MaxMessageSize: c.TCP.MaxMessageSize,
		DialTimeout:    c.TCP.DialTimeout,
	}
}

// MessagingConfig returns the messaging.Config implied by this
// configuration (excluding the PathLength/Logger/ConnID fields, which the
// caller wires per-connection).
func (c *Config) MessagingConfig() messaging.Config {
	return messaging.Config{
		SweepInterval: c.Messaging.SweepInterval,
		DirectFloor:   c.Messaging.DirectFloor,
		PerHopTimeout: c.Messaging.PerHopTimeout,
		FloodTimeout:  c.Messaging.FloodTimeout,
	}
}

// SendParams returns the messaging.SendParams implied by this
// configuration's reliability tuning.
func (c *Config) SendParams() messaging.SendParams {
	return messaging.SendParams{
		MaxAttempts:      c.Messaging.MaxAttempts,
		FloodAfter:       c.Messaging.FloodAfter,
		MaxFloodAttempts: c.Messaging.MaxFloodAttempts,
	}
}
