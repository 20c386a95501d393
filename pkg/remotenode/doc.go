// Package remotenode implements RemoteNodeService (spec.md component 11):
// login/logout to room and repeater nodes, and the binary-response queries
// (status, telemetry, neighbours, ACL, MMA) an admin session against a
// logged-in node can issue. Firmware supports one active admin login at a
// time, and its login/telemetry results arrive as untargeted pushes, so the
// service tracks a single current-node session rather than per-node state.
package remotenode
