package messaging

import (
	"sync"
	"time"
)

// ackResult is delivered to a waiting send attempt either by the ack
// listener (delivered=true) or by the periodic sweeper (delivered=false,
// meaning the entry's timeout elapsed before a matching ack arrived).
type ackResult struct {
	delivered bool
	rtt       time.Duration
}

// ackEntry is one outstanding delivery expectation (spec.md §4.9's
// AckEntry), keyed by the opaque 32-bit ack code firmware hands back in a
// RespSent reply.
type ackEntry struct {
	ackCode      uint32
	messageID    string
	createdAt    time.Time
	attemptIndex int
	timeoutAt    time.Time
	resultCh     chan ackResult
}

// ackTable tracks outstanding AckEntry records, keyed by ack code. It is
// owned exclusively by MessageService (spec §5: "mutated only from its
// task"); the shape - a Mutex-guarded map plus copy-on-read accessors -
// follows pkg/service/renewal_tracker.go's RenewalTracker, generalized
// from certificate expiry tracking to message delivery tracking.
type ackTable struct {
	mu      sync.Mutex
	entries map[uint32]*ackEntry
}

func newAckTable() *ackTable {
	return &ackTable{entries: make(map[uint32]*ackEntry)}
}

// insert registers a new outstanding ack expectation and returns it.
func (t *ackTable) insert(ackCode uint32, messageID string, attemptIndex int, timeout time.Duration) *ackEntry {
	now := time.Now()
	e := &ackEntry{
		ackCode:      ackCode,
		messageID:    messageID,
		createdAt:    now,
		attemptIndex: attemptIndex,
		timeoutAt:    now.Add(timeout),
		resultCh:     make(chan ackResult, 1),
	}
	t.mu.Lock()
	t.entries[ackCode] = e
	t.mu.Unlock()
	return e
}

// remove discards an entry regardless of outcome; safe to call more than
// once for the same code.
func (t *ackTable) remove(ackCode uint32) {
	t.mu.Lock()
	delete(t.entries, ackCode)
	t.mu.Unlock()
}

// deliver matches an inbound ack code against the table. If an entry is
// waiting on it, the entry is removed and its waiter signalled with the
// round-trip time; otherwise the ack is an orphan (no-op).
func (t *ackTable) deliver(ackCode uint32) (matched bool, rtt time.Duration) {
	t.mu.Lock()
	e, ok := t.entries[ackCode]
	if ok {
		delete(t.entries, ackCode)
	}
	t.mu.Unlock()
	if !ok {
		return false, 0
	}
	rtt = time.Since(e.createdAt)
	select {
	case e.resultCh <- ackResult{delivered: true, rtt: rtt}:
	default:
	}
	return true, rtt
}

// sweepExpired removes and signals every entry whose timeout has elapsed
// as of now. Called from the periodic sweep loop; safe to call
// concurrently with insert/deliver/remove.
func (t *ackTable) sweepExpired(now time.Time) int {
	t.mu.Lock()
	var expired []*ackEntry
	for code, e := range t.entries {
		if now.After(e.timeoutAt) {
			expired = append(expired, e)
			delete(t.entries, code)
		}
	}
	t.mu.Unlock()

	for _, e := range expired {
		select {
		case e.resultCh <- ackResult{delivered: false}:
		default:
		}
	}
	return len(expired)
}

// count returns the number of outstanding entries. Used by tests.
func (t *ackTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
