// Package discovery implements mDNS/DNS-SD auto-discovery for MeshCore
// companion bridges.
//
// A companion bridge is a TCP server that proxies the binary companion
// protocol to a LoRa mesh radio (as opposed to a BLE companion, which is
// found by platform BLE scanning and has no mDNS presence). Bridges
// advertise a single service type:
//
// # Companion Discovery (_meshcore._tcp)
//
// Instance name format: MeshCore-<pubkey-prefix-hex>.
// TXT records include: pk (the node's 6-byte public key prefix, hex
// encoded), name (the node's display name), fv (the frame version the
// bridge speaks, e.g. "v3"), and optionally fw (firmware version) and
// model.
package discovery
