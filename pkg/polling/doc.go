// Package polling implements MessagePollingService (spec.md component 12):
// a thin listener that re-enters the sync coordinator's messages phase
// whenever the device signals MSG_WAITING, so queued messages are drained
// without repeating the contacts/channels phases (spec §4.11).
package polling
