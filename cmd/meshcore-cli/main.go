// Command meshcore-cli is a reference MeshCore companion host.
//
// It connects to a companion bridge (BLE radio or TCP bridge), performs
// the appStart handshake, runs the contacts/channels/messages sync, and
// drops into an interactive command shell for sending messages and
// driving the remote-node admin RPCs.
//
// Usage:
//
//	meshcore-cli [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML, see pkg/config)
//	-address string  Override tcp.address from the config file
//	-no-sync         Skip the startup sync and drop straight to the shell
//	-protocol-log string  Append CBOR protocol events to this file
//
// Examples:
//
//	# Connect to a TCP bridge using a config file
//	meshcore-cli -config companion.yaml
//
//	# Connect to a bridge by address, skipping persisted config
//	meshcore-cli -address 192.168.1.50:5000
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/config"
	mclog "github.com/mikewren/PocketMesh-sub009/pkg/log"
	"github.com/mikewren/PocketMesh-sub009/pkg/messaging"
	"github.com/mikewren/PocketMesh-sub009/pkg/persistence"
	"github.com/mikewren/PocketMesh-sub009/pkg/remotenode"
	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	syncpkg "github.com/mikewren/PocketMesh-sub009/pkg/sync"
	"github.com/mikewren/PocketMesh-sub009/pkg/transport"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

var (
	configFile  string
	addressFlag string
	noSync      bool
	protoLog    string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&addressFlag, "address", "", "TCP bridge address, overrides config")
	flag.BoolVar(&noSync, "no-sync", false, "Skip startup sync, drop straight to the shell")
	flag.StringVar(&protoLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "meshcore-cli: %v\n", err)
		os.Exit(1)
	}
	if addressFlag != "" {
		cfg.Transport = config.TransportTCP
		cfg.TCP.Address = addressFlag
	}
	if protoLog != "" {
		cfg.LogFile = protoLog
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "meshcore-cli: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		if addressFlag == "" {
			return nil, fmt.Errorf("either -config or -address is required")
		}
		return config.Parse([]byte("transport: tcp\ntcp:\n  address: " + addressFlag + "\n"))
	}
	return config.Load(configFile)
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, closeLogger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer closeLogger()

	tr, err := buildTransport(cfg, logger)
	if err != nil {
		return fmt.Errorf("building transport: %w", err)
	}
	if err := tr.Connect(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer tr.Close()

	sess := session.New(tr, logger, cfg.ClientID)
	defer sess.Close()

	self, err := sess.Start(ctx, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("appStart handshake: %w", err)
	}
	fmt.Printf("connected to %s\n", self.NodeName)

	store := persistence.NewFileStore(cfg.PersistencePath)

	msgSvc := messaging.New(sess, cfg.MessagingConfig(), messaging.Callbacks{
		OnRetryStatus: func(id string, attempt, max int) {
			fmt.Printf("\n[retry] %s attempt %d/%d\n", id, attempt, max)
		},
		OnRoutingChanged: func(to [6]byte, flood bool) {
			fmt.Printf("\n[routing] %x now flood=%v\n", to, flood)
		},
		OnAckConfirmation: func(ackCode uint32, rtt time.Duration) {
			fmt.Printf("\n[ack] %08x rtt=%s\n", ackCode, rtt)
		},
		OnMessageFailed: func(id string) {
			fmt.Printf("\n[failed] %s\n", id)
		},
	})
	msgSvc.Start()
	defer msgSvc.Stop()

	remoteSvc := remotenode.New(sess, remotenode.Callbacks{
		OnLoginResult: func(to [6]byte, permLevel uint8, sessionID uint32) {
			fmt.Printf("\n[login] %x perm=%d session=%d\n", to, permLevel, sessionID)
		},
		OnStatusResponse: func(sr *wire.StatusResponse) {
			fmt.Printf("\n[status] %x battery=%dmV\n", sr.PubkeyPrefix, sr.BatteryMilliV)
		},
		OnKeepAlive: func(at uint32) {},
	})
	remoteSvc.Start()
	defer remoteSvc.Stop()

	coord := syncpkg.New(sess, store, syncpkg.Config{}, syncpkg.Callbacks{
		OnSyncPhaseChanged: func(phase syncpkg.SyncPhase) {
			fmt.Printf("sync: %s\n", phase)
		},
		OnPhaseError: func(phase syncpkg.SyncPhase, err error) {
			fmt.Printf("sync: %s failed: %v\n", phase, err)
		},
	})

	if !noSync {
		if err := coord.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "sync incomplete: %v\n", err)
		}
	}

	shell := newShell(sess, msgSvc, remoteSvc, store)
	shell.Run(ctx)
	return nil
}

func buildLogger(cfg *config.Config) (mclog.Logger, func(), error) {
	console := mclog.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if cfg.LogFile == "" {
		return console, func() {}, nil
	}
	fileLogger, err := mclog.NewFileLogger(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	multi := mclog.NewMultiLogger(console, fileLogger)
	return multi, func() { fileLogger.Close() }, nil
}

func buildTransport(cfg *config.Config, logger mclog.Logger) (transport.Transport, error) {
	switch cfg.Transport {
	case config.TransportTCP:
		tcfg := cfg.TransportConfig()
		tcfg.Logger = logger
		return transport.NewTCPTransport(tcfg), nil
	case config.TransportBLE:
		return nil, fmt.Errorf("BLE transport requires a platform peripheral; run meshcore-cli against a TCP bridge instead")
	default:
		return nil, config.ErrUnknownTransport
	}
}
