package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mikewren/PocketMesh-sub009/pkg/log"
	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// Defaults per spec §4.9/§5.
const (
	DefaultMaxAttempts      = 4
	DefaultFloodAfter       = 2
	DefaultMaxFloodAttempts = 2

	DefaultSweepInterval = 5 * time.Second
	DefaultDirectFloor   = 2 * time.Second
	DefaultPerHopTimeout = 1 * time.Second
	DefaultFloodTimeout  = 10 * time.Second
)

// ErrMessageFailed is returned when every attempt is exhausted without a
// matching ack.
var ErrMessageFailed = errors.New("messaging: message delivery failed after all attempts")

// PathLengthLookup resolves a contact's current outPathLength (-1 means
// unknown/flood-only), used to compute the adaptive per-attempt timeout
// for direct sends. Callers typically back this with their contact store.
type PathLengthLookup func(to [6]byte) int8

// Callbacks are the application-facing notifications spec §4.9 names.
// Any field left nil is simply not invoked.
type Callbacks struct {
	OnRetryStatus     func(messageID string, attempt, maxAttempts int)
	OnRoutingChanged  func(to [6]byte, isFlood bool)
	OnAckConfirmation func(ackCode uint32, rtt time.Duration)
	OnMessageFailed   func(messageID string)
}

// Config tunes MessageService. Zero values fall back to the package
// defaults above.
type Config struct {
	SweepInterval time.Duration
	DirectFloor   time.Duration
	PerHopTimeout time.Duration
	FloodTimeout  time.Duration
	PathLength    PathLengthLookup
	Logger        log.Logger
	ConnID        string
}

func (c *Config) setDefaults() {
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.DirectFloor <= 0 {
		c.DirectFloor = DefaultDirectFloor
	}
	if c.PerHopTimeout <= 0 {
		c.PerHopTimeout = DefaultPerHopTimeout
	}
	if c.FloodTimeout <= 0 {
		c.FloodTimeout = DefaultFloodTimeout
	}
	if c.Logger == nil {
		c.Logger = log.NoopLogger{}
	}
}

// SendParams tunes one SendMessageWithRetry call. Zero values fall back to
// the package defaults (4, 2, 2).
type SendParams struct {
	MaxAttempts      int
	FloodAfter       int
	MaxFloodAttempts int
	TimeoutHint      time.Duration

	// floodFromStart keeps FloodAfter at zero (set by ManualRetry).
	floodFromStart bool
}

func (p *SendParams) setDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.FloodAfter <= 0 && !p.floodFromStart {
		p.FloodAfter = DefaultFloodAfter
	}
	if p.MaxFloodAttempts <= 0 {
		p.MaxFloodAttempts = DefaultMaxFloodAttempts
	}
}

// MessageService is the MeshCore reliability layer built on a
// session.Session. Create with New, call Start before sending, Close when
// done.
type MessageService struct {
	sess *session.Session
	cfg  Config
	cb   Callbacks

	table *ackTable

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// New creates a MessageService over sess. Call Start to begin the ack
// listener and periodic sweep.
func New(sess *session.Session, cfg Config, cb Callbacks) *MessageService {
	cfg.setDefaults()
	return &MessageService{
		sess:  sess,
		cfg:   cfg,
		cb:    cb,
		table: newAckTable(),
	}
}

// Start launches the background ack listener and sweep loop. Calling
// Start twice is a no-op, mirroring the teacher's
// NotificationDispatcher.Start/Stop idempotency.
func (m *MessageService) Start() {
	if m.running.Swap(true) {
		return
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.wg.Add(2)
	go m.listenAcks()
	go m.sweepLoop()
}

// Stop cancels the background loops and waits for them to exit.
func (m *MessageService) Stop() {
	if !m.running.Swap(false) {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *MessageService) listenAcks() {
	defer m.wg.Done()
	events := m.sess.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind == wire.EventAckConfirmed {
				m.table.deliver(ev.AckCode)
			}
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *MessageService) sweepLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.table.sweepExpired(time.Now())
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *MessageService) directTimeout(to [6]byte, hint time.Duration) time.Duration {
	if hint > 0 {
		return hint
	}
	pathLen := int8(0)
	if m.cfg.PathLength != nil {
		if n := m.cfg.PathLength(to); n > 0 {
			pathLen = n
		}
	}
	adaptive := m.cfg.DirectFloor + time.Duration(pathLen)*m.cfg.PerHopTimeout
	if adaptive < m.cfg.DirectFloor {
		adaptive = m.cfg.DirectFloor
	}
	return adaptive
}

// SendMessageWithRetry drives the direct-then-flood retry loop for one
// message (spec §4.9). It returns the generated message id; the id is
// the one passed to the retryStatus and messageFailed callbacks
// (ackConfirmation receives the attempt's ack code instead).
func (m *MessageService) SendMessageWithRetry(ctx context.Context, to [6]byte, text string, ts uint32, params SendParams) (string, error) {
	params.setDefaults()
	messageID := uuid.New().String()

	for i := 0; i < params.MaxAttempts; i++ {
		isFlood := i >= params.FloodAfter
		if isFlood && i == params.FloodAfter {
			if err := m.sess.ResetPath(ctx, to[:]); err != nil {
				return messageID, err
			}
			if m.cb.OnRoutingChanged != nil {
				m.cb.OnRoutingChanged(to, true)
			}
		}

		var timeout time.Duration
		if isFlood {
			timeout = m.cfg.FloodTimeout
		} else {
			timeout = m.directTimeout(to, params.TimeoutHint)
		}

		sent, err := m.sess.SendMessage(ctx, to, text, ts, uint8(i))
		if err != nil {
			return messageID, err
		}
		if sent.SuggestedTimeoutMs > 0 {
			timeout = time.Duration(sent.SuggestedTimeoutMs) * time.Millisecond
		}

		ackCode := sent.ExpectedAckCode()
		entry := m.table.insert(ackCode, messageID, i, timeout)

		select {
		case res := <-entry.resultCh:
			if res.delivered {
				if m.cb.OnAckConfirmation != nil {
					m.cb.OnAckConfirmation(ackCode, res.rtt)
				}
				return messageID, nil
			}
			// Sweeper declared this attempt expired; fall through to retry.
		case <-ctx.Done():
			m.table.remove(ackCode)
			return messageID, ctx.Err()
		}
		m.table.remove(ackCode)

		if i < params.MaxAttempts-1 && m.cb.OnRetryStatus != nil {
			m.cb.OnRetryStatus(messageID, i+1, params.MaxAttempts)
		}
	}

	m.cfg.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: m.cfg.ConnID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerService,
			Message: ErrMessageFailed.Error(),
			Context: messageID,
		},
	})
	if m.cb.OnMessageFailed != nil {
		m.cb.OnMessageFailed(messageID)
	}
	return messageID, ErrMessageFailed
}

// ManualRetry re-queues a previously failed message with the caller's
// timestamp ts, forcing flood routing from the first attempt (spec §4.9:
// "uses the same contract as above").
func (m *MessageService) ManualRetry(ctx context.Context, to [6]byte, text string, ts uint32, params SendParams) (string, error) {
	params.FloodAfter = 0
	params.floodFromStart = true
	return m.SendMessageWithRetry(ctx, to, text, ts, params)
}

// PendingCount returns the number of outstanding ack entries. Exposed for
// diagnostics and tests.
func (m *MessageService) PendingCount() int {
	return m.table.count()
}
