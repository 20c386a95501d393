// Package messaging implements MessageService, the MeshCore reliability
// layer (spec §4.9): direct-then-flood retry, ack-code correlation with
// periodic expiry sweeping, and status callbacks.
//
// SendMessageWithRetry drives up to maxAttempts sends to a contact,
// routing the first floodAfter attempts directly and the remainder by
// flood broadcast (after resetting the contact's path). Each attempt
// registers an AckEntry keyed by the 4-byte ack code firmware returns;
// delivery is confirmed by a matching PushAckConfirmed event, or the
// attempt is abandoned once the ack table's background sweeper notices
// its deadline has passed.
package messaging
