// Package sync implements SyncCoordinator, the three-phase post-connect
// synchronization sequence (spec §4.10): contacts, then channels, then
// queued messages. A syncActivity start/end pair brackets the whole
// operation; a SyncPhase callback fires at each phase boundary. Failure
// in one phase is reported but does not abort the remaining phases.
//
// Run is re-entrant for the messages phase only: MSG_WAITING pushes
// drive RunMessagesPhase directly without repeating contacts/channels
// (spec §4.11).
package sync
