package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/log"
	"github.com/mikewren/PocketMesh-sub009/pkg/transport"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

func messageTypeOf(ev *wire.MeshEvent) log.MessageType {
	if ev.IsPush() || ev.Code.IsPush() {
		return log.MessageTypePush
	}
	return log.MessageTypeResponse
}

// DefaultRequestTimeout bounds a request/response round trip when the
// caller doesn't supply a more specific one.
const DefaultRequestTimeout = 10 * time.Second

// DefaultNeighbourPrefixLen is the prefix width requested by
// FetchAllNeighbours when the caller doesn't care.
const DefaultNeighbourPrefixLen = 6

var (
	// ErrRequestTimeout is returned when no matching response arrives
	// within the request's timeout.
	ErrRequestTimeout = errors.New("session: request timed out")

	// ErrNotStarted is returned by any RPC issued before Start succeeds.
	ErrNotStarted = errors.New("session: appStart handshake not completed")

	// ErrClosed is returned by requests issued after Close.
	ErrClosed = errors.New("session: closed")
)

// DeviceError wraps a RespError frame's single error-code byte.
type DeviceError struct {
	Code uint8
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("session: device returned error code 0x%02x", e.Code)
}

// pendingRequest is the single outstanding request a Session tracks at a
// time. terminal holds the response codes that end the wait; collectCode,
// when hasCollect is set, names a repeating response code (e.g.
// RespContact) accumulated until a terminal code arrives.
type pendingRequest struct {
	terminal    map[wire.ResponseCode]bool
	hasCollect  bool
	collectCode wire.ResponseCode

	mu        sync.Mutex
	collected []*wire.MeshEvent

	resultCh chan *wire.MeshEvent
}

// Session is the MeshCore companion session layer: one logical writer
// serializing request/response RPC over a transport.Transport, broadcasting
// push frames to subscribers.
type Session struct {
	tr     transport.Transport
	logger log.Logger
	connID string

	lockCh chan struct{} // 1-buffered ticket mutex; see acquireLock.

	mu       sync.Mutex
	pending  *pendingRequest
	selfInfo *wire.SelfInfo
	started  bool

	subsMu sync.Mutex
	subs   []chan *wire.MeshEvent

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Session over tr. Call Start before issuing any other RPC.
func New(tr transport.Transport, logger log.Logger, connID string) *Session {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	lockCh := make(chan struct{}, 1)
	lockCh <- struct{}{}
	s := &Session{
		tr:     tr,
		logger: logger,
		connID: connID,
		lockCh: lockCh,
		done:   make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// acquireLock waits for the FIFO request ticket. Go's runtime wakes
// channel receivers in the order they started waiting, which is what gives
// this ticket mutex its FIFO ordering (spec §4.8: requests are served in
// the order callers issue them, never reordered).
func (s *Session) acquireLock(ctx context.Context) error {
	select {
	case <-s.lockCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

func (s *Session) releaseLock() {
	s.lockCh <- struct{}{}
}

// Start performs the appStart handshake and caches the device's SelfInfo.
// It must be called, and must succeed, before any other RPC.
func (s *Session) Start(ctx context.Context, clientID string) (*wire.SelfInfo, error) {
	ev, err := s.request(ctx, wire.AppStart(clientID), map[wire.ResponseCode]bool{wire.RespSelfInfo: true}, DefaultRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("appStart: %w", err)
	}
	if ev.Kind != wire.EventSelfInfo || ev.SelfInfo == nil {
		return nil, fmt.Errorf("appStart: unexpected response kind %v", ev.Kind)
	}
	s.mu.Lock()
	s.selfInfo = ev.SelfInfo
	s.started = true
	s.mu.Unlock()
	return ev.SelfInfo, nil
}

// SelfInfo returns the cached appStart response, or nil if Start hasn't
// completed yet.
func (s *Session) SelfInfo() *wire.SelfInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfInfo
}

func (s *Session) requireStarted() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	return nil
}

// request sends frame and waits for the first response whose code is in
// expect (or RespError, always terminal). It is the workhorse every
// single-response RPC wrapper below builds on.
func (s *Session) request(ctx context.Context, frame []byte, expect map[wire.ResponseCode]bool, timeout time.Duration) (*wire.MeshEvent, error) {
	ev, _, err := s.requestCollecting(ctx, frame, false, 0, expect, timeout)
	return ev, err
}

// requestCollecting additionally accumulates every occurrence of
// collectCode that arrives before a terminal code, returning them alongside
// the terminal event. Used by GetContacts, whose response is a run of
// RespContact frames closed by RespContactsEnd.
func (s *Session) requestCollecting(ctx context.Context, frame []byte, hasCollect bool, collectCode wire.ResponseCode, terminal map[wire.ResponseCode]bool, timeout time.Duration) (*wire.MeshEvent, []*wire.MeshEvent, error) {
	if err := s.acquireLock(ctx); err != nil {
		return nil, nil, err
	}
	defer s.releaseLock()

	select {
	case <-s.done:
		return nil, nil, ErrClosed
	default:
	}

	p := &pendingRequest{
		terminal:    terminal,
		hasCollect:  hasCollect,
		collectCode: collectCode,
		resultCh:    make(chan *wire.MeshEvent, 1),
	}

	s.mu.Lock()
	s.pending = p
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}()

	sendStart := time.Now()
	if len(frame) > 0 {
		cmd := wire.Command(frame[0])
		s.logger.Log(log.Event{
			Timestamp:    sendStart,
			ConnectionID: s.connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerSession,
			Category:     log.CategoryMessage,
			Message:      &log.MessageEvent{Type: log.MessageTypeCommand, Command: &cmd},
		})
	}

	if err := s.tr.Send(ctx, frame); err != nil {
		return nil, nil, err
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	select {
	case ev := <-p.resultCh:
		p.mu.Lock()
		collected := p.collected
		p.mu.Unlock()
		s.logResponse(ev, time.Since(sendStart))
		if ev.Kind == wire.EventError {
			return ev, collected, &DeviceError{Code: ev.ErrorCode}
		}
		return ev, collected, nil
	case <-time.After(timeout):
		return nil, nil, ErrRequestTimeout
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-s.done:
		return nil, nil, ErrClosed
	}
}

func (s *Session) logResponse(ev *wire.MeshEvent, elapsed time.Duration) {
	code := ev.Code
	kind := ev.Kind
	s.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerSession,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:           log.MessageTypeResponse,
			ResponseCode:   &code,
			EventKind:      &kind,
			ProcessingTime: &elapsed,
		},
	})
}

func (s *Session) dispatchLoop() {
	for {
		select {
		case frame, ok := <-s.tr.ReceivedFrames():
			if !ok {
				return
			}
			s.handleFrame(frame)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleFrame(frame []byte) {
	if len(frame) == 0 {
		return
	}
	code := wire.ResponseCode(frame[0])
	payload := frame[1:]

	ev := wire.Parse(code, payload, DefaultNeighbourPrefixLen)
	s.handleEvent(ev)
}

// handleEvent applies pending-request bookkeeping (collecting a run
// member, or delivering a terminal match to the waiting requestCollecting
// call) and then always broadcasts ev to Events() subscribers. Broadcast
// is unconditional: a terminal-matching event must still reach
// subscribers (spec: "events() ... including those that also satisfied a
// request"), and an event that matches no pending request at all - either
// because none is outstanding, or the matching request already timed out
// and cleared s.pending - is exactly the orphan push spec describes for
// in-flight writes whose response arrives after the caller gave up.
func (s *Session) handleEvent(ev *wire.MeshEvent) {
	s.mu.Lock()
	p := s.pending
	s.mu.Unlock()

	if p != nil {
		if p.hasCollect && ev.Code == p.collectCode {
			p.mu.Lock()
			p.collected = append(p.collected, ev)
			p.mu.Unlock()
		} else if p.terminal[ev.Code] || ev.Kind == wire.EventError {
			select {
			case p.resultCh <- ev:
			default:
			}
		}
	}

	if ev.Code.IsPush() || ev.IsPush() {
		code := ev.Code
		kind := ev.Kind
		s.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: s.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerSession,
			Category:     log.CategoryMessage,
			Message: &log.MessageEvent{
				Type:         messageTypeOf(ev),
				ResponseCode: &code,
				EventKind:    &kind,
			},
		})
	}
	s.broadcast(ev)
}

// Events returns a channel of every inbound MeshEvent: push events
// (NEW_ADVERT, loginResult, keepAliveAck, ...), responses that also
// satisfied a pending request, and orphaned responses that arrive after
// their request timed out or was cancelled. The returned channel is
// closed when the session is closed.
func (s *Session) Events() <-chan *wire.MeshEvent {
	ch := make(chan *wire.MeshEvent, 32)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Session) broadcast(ev *wire.MeshEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop oldest rather than block the
			// dispatch loop.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Close stops the dispatch loop and closes all Events() subscriber
// channels. It does not close the underlying transport.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.subsMu.Lock()
		for _, ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.subsMu.Unlock()
	})
	return nil
}
