// Package persistence provides the PersistenceStore contract the sync
// coordinator and message services consume (spec §6's persistence
// boundary): upserting contacts and channels by stable id, appending
// received messages, and tracking the contacts-phase sync cursor
// (lastSyncTimestamp). FileStore is a JSON-file reference implementation;
// applications may substitute their own (SQL, key-value, in-memory).
package persistence
