package transport

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// ConnState is a state in the BLE/TCP connection lifecycle (spec §4.7):
//
//	idle -> discoveringServices -> discoveringCharacteristics ->
//	subscribingToNotifications -> ready -> (disconnecting | autoReconnecting) -> idle
type ConnState uint8

const (
	// StateIdle is the initial/terminal state: no connection attempt in
	// progress.
	StateIdle ConnState = iota

	// StateDiscoveringServices is entered once the underlying link
	// (BLE ATT connection or TCP socket) is up and service/characteristic
	// discovery has begun.
	StateDiscoveringServices

	// StateDiscoveringCharacteristics follows service discovery.
	StateDiscoveringCharacteristics

	// StateSubscribingToNotifications is entered once the MeshCore
	// characteristic (or its TCP equivalent) has been located and
	// notification subscription is in flight.
	StateSubscribingToNotifications

	// StateReady means subscription/negotiation is complete: the
	// session layer may begin sending frames.
	StateReady

	// StateDisconnecting is entered on a deliberate, caller-initiated
	// teardown.
	StateDisconnecting

	// StateAutoReconnecting is entered only from StateReady on an
	// unexpected disconnect with a known device id.
	StateAutoReconnecting
)

// String returns the state name.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscoveringServices:
		return "discoveringServices"
	case StateDiscoveringCharacteristics:
		return "discoveringCharacteristics"
	case StateSubscribingToNotifications:
		return "subscribingToNotifications"
	case StateReady:
		return "ready"
	case StateDisconnecting:
		return "disconnecting"
	case StateAutoReconnecting:
		return "autoReconnecting"
	default:
		return "unknown"
	}
}

// Backoff constants for auto-reconnect (spec §4.7, defaults shared with
// the teacher's reconnection strategy).
const (
	InitialBackoff    = 1 * time.Second
	MaxBackoff        = 60 * time.Second
	BackoffMultiplier = 2.0
	JitterFactor      = 0.25
)

// Backoff calculates exponential backoff delays with jitter. Grounded on
// the teacher's connection-manager backoff calculator, generalized to
// serve any transport's auto-reconnect loop rather than one TLS client.
type Backoff struct {
	mu      sync.Mutex
	current time.Duration
	initial time.Duration
	max     time.Duration
	mult    float64
	jitter  float64
	rng     *rand.Rand
}

// NewBackoff creates a backoff calculator with the spec's default
// parameters.
func NewBackoff() *Backoff {
	return &Backoff{
		current: InitialBackoff,
		initial: InitialBackoff,
		max:     MaxBackoff,
		mult:    BackoffMultiplier,
		jitter:  JitterFactor,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next jittered delay and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	next := time.Duration(float64(b.current) * b.mult)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Reset returns the backoff to its initial value. Call after a
// successful reconnect.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
}

func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}

// stateMachine tracks the connection lifecycle for one transport and
// fans out transitions to ConnectionState() observers. It owns exactly
// one outstanding state-transition timeout, cancelled on any transition
// out of the state that armed it (spec §4.7 invariant).
type stateMachine struct {
	mu    sync.Mutex
	state ConnState
	subs  []chan ConnState

	timeoutCancel context.CancelFunc

	backoff *Backoff
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		state:   StateIdle,
		backoff: NewBackoff(),
	}
}

func (sm *stateMachine) current() ConnState {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state
}

// subscribe returns a new channel that will receive every subsequent
// transition. Buffered so a slow consumer doesn't block the transition.
func (sm *stateMachine) subscribe() <-chan ConnState {
	ch := make(chan ConnState, 16)
	sm.mu.Lock()
	sm.subs = append(sm.subs, ch)
	sm.mu.Unlock()
	return ch
}

// transition moves to newState, cancelling any outstanding
// state-transition timeout armed by the previous state.
func (sm *stateMachine) transition(newState ConnState) {
	sm.mu.Lock()
	if sm.timeoutCancel != nil {
		sm.timeoutCancel()
		sm.timeoutCancel = nil
	}
	sm.state = newState
	if newState == StateReady {
		sm.backoff.Reset()
	}
	subs := append([]chan ConnState(nil), sm.subs...)
	sm.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- newState:
		default:
		}
	}
}

// armTimeout starts a timer that transitions to onTimeout if the state
// machine doesn't leave fromState within d. Replaces any previously
// armed timeout.
func (sm *stateMachine) armTimeout(ctx context.Context, d time.Duration, fromState, onTimeout ConnState) {
	timeoutCtx, cancel := context.WithCancel(ctx)

	sm.mu.Lock()
	if sm.timeoutCancel != nil {
		sm.timeoutCancel()
	}
	sm.timeoutCancel = cancel
	sm.mu.Unlock()

	go func() {
		select {
		case <-timeoutCtx.Done():
			return
		case <-time.After(d):
		}
		sm.mu.Lock()
		stillInState := sm.state == fromState
		sm.mu.Unlock()
		if stillInState {
			sm.transition(onTimeout)
		}
	}()
}

// shutdown cancels all timers and closes all subscriber channels,
// resolving any waiters.
func (sm *stateMachine) shutdown() {
	sm.mu.Lock()
	if sm.timeoutCancel != nil {
		sm.timeoutCancel()
		sm.timeoutCancel = nil
	}
	subs := sm.subs
	sm.subs = nil
	sm.state = StateIdle
	sm.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}
