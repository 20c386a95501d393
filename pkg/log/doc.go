// Package log provides structured protocol logging for the MeshCore
// companion connection.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, wire, session,
// service). It is separate from operational logging (slog) - protocol
// capture provides a complete machine-readable event trace for debugging
// and analysis of the companion radio link.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation,
// for example as the Logger field of transport.TCPConfig:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	fileLogger, err := log.NewFileLogger("/var/log/meshcore/session.mlog")
//	if err != nil {
//	    return err
//	}
//	cfg.Logger = fileLogger
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Wire/Session: Decoded commands, responses and pushes (MessageEvent)
//   - Service: State changes (StateChangeEvent)
//
// Control messages (ping/pong/close) and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding with a .mlog extension.
package log
