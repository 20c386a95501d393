package remotenode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// ErrNoActiveSession is returned by operations that require a prior
// successful Login.
var ErrNoActiveSession = errors.New("remotenode: no active admin session")

// Callbacks are the application-facing notifications for the current
// node's push-delivered events. Any field left nil is simply not invoked.
type Callbacks struct {
	OnLoginResult       func(to [6]byte, permLevel uint8, sessionID uint32)
	OnStatusResponse    func(sr *wire.StatusResponse)
	OnTelemetryResponse func(to [6]byte, tr *wire.TelemetryResponse)
	OnKeepAlive         func(at uint32)
}

// State is a snapshot of the current admin session, returned by
// Service.State.
type State struct {
	Target        [6]byte
	HasTarget     bool
	LoggedIn      bool
	PermLevel     uint8
	SessionID     uint32
	LastKeepAlive time.Time
	LastStatus    *wire.StatusResponse
	LastTelemetry *wire.TelemetryResponse
}

// Service drives RemoteNodeService: login/logout to a room or repeater
// node, and the admin-session queries that target (status, telemetry,
// neighbours, ACL, MMA). Create with New, call Start before issuing
// requests so the push listener is running.
type Service struct {
	sess *session.Session
	cb   Callbacks

	mu    sync.Mutex
	state State

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// New creates a Service over sess.
func New(sess *session.Session, cb Callbacks) *Service {
	return &Service{sess: sess, cb: cb}
}

// Start launches the background push listener. Calling Start twice is a
// no-op.
func (svc *Service) Start() {
	if svc.running.Swap(true) {
		return
	}
	svc.ctx, svc.cancel = context.WithCancel(context.Background())
	svc.wg.Add(1)
	go svc.listen()
}

// Stop cancels the background listener and waits for it to exit.
func (svc *Service) Stop() {
	if !svc.running.Swap(false) {
		return
	}
	if svc.cancel != nil {
		svc.cancel()
	}
	svc.wg.Wait()
}

func (svc *Service) listen() {
	defer svc.wg.Done()
	events := svc.sess.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			svc.handleEvent(ev)
		case <-svc.ctx.Done():
			return
		}
	}
}

func (svc *Service) handleEvent(ev *wire.MeshEvent) {
	switch ev.Kind {
	case wire.EventLoginResult:
		svc.mu.Lock()
		svc.state.LoggedIn = true
		svc.state.PermLevel = ev.LoginPermLevel
		svc.state.SessionID = ev.LoginSessionID
		target := svc.state.Target
		svc.mu.Unlock()
		if svc.cb.OnLoginResult != nil {
			svc.cb.OnLoginResult(target, ev.LoginPermLevel, ev.LoginSessionID)
		}
	case wire.EventStatusResponse:
		svc.mu.Lock()
		svc.state.LastStatus = ev.StatusResponse
		svc.mu.Unlock()
		if svc.cb.OnStatusResponse != nil {
			svc.cb.OnStatusResponse(ev.StatusResponse)
		}
	case wire.EventTelemetryResponse:
		svc.mu.Lock()
		svc.state.LastTelemetry = ev.Telemetry
		target := svc.state.Target
		svc.mu.Unlock()
		if svc.cb.OnTelemetryResponse != nil {
			svc.cb.OnTelemetryResponse(target, ev.Telemetry)
		}
	case wire.EventKeepAliveAck:
		svc.mu.Lock()
		svc.state.LastKeepAlive = time.Now()
		svc.mu.Unlock()
		if svc.cb.OnKeepAlive != nil {
			svc.cb.OnKeepAlive(ev.KeepAliveAt)
		}
	}
}

// Login authenticates to a remote room or repeater node (spec §4.8). The
// permission level and session id are delivered later via OnLoginResult;
// this call only confirms the device accepted the frame.
func (svc *Service) Login(ctx context.Context, to [6]byte, password string) error {
	if err := svc.sess.SendLogin(ctx, to[:], password); err != nil {
		return err
	}
	svc.mu.Lock()
	svc.state.Target = to
	svc.state.HasTarget = true
	svc.mu.Unlock()
	return nil
}

// Logout ends the current admin session. Unlike Login, firmware
// acknowledges logout synchronously, so the local session state clears
// immediately.
func (svc *Service) Logout(ctx context.Context, to [6]byte) error {
	if err := svc.sess.SendLogout(ctx, to[:]); err != nil {
		return err
	}
	svc.mu.Lock()
	svc.state.LoggedIn = false
	svc.state.PermLevel = 0
	svc.state.SessionID = 0
	svc.mu.Unlock()
	return nil
}

// RequestStatus asks to for its link/radio counters; the result is
// delivered via OnStatusResponse, correlated by the pubkey prefix the push
// carries.
func (svc *Service) RequestStatus(ctx context.Context, to [6]byte) error {
	return svc.sess.SendStatusRequest(ctx, to[:])
}

// RequestTelemetry asks to for its Cayenne LPP telemetry; the result is
// delivered via OnTelemetryResponse. The telemetry push carries no node
// identifier, so the target reported to the callback is whichever node
// this call (or the last Login) most recently addressed.
func (svc *Service) RequestTelemetry(ctx context.Context, to [6]byte) error {
	if err := svc.sess.RequestTelemetry(ctx, to[:]); err != nil {
		return err
	}
	svc.mu.Lock()
	svc.state.Target = to
	svc.state.HasTarget = true
	svc.mu.Unlock()
	return nil
}

// RequestNeighbours fetches the one-hop neighbour table of the currently
// logged-in admin session. prefixLen selects 4- or 6-byte prefixes; pass 0
// for the session default.
func (svc *Service) RequestNeighbours(ctx context.Context, prefixLen uint8) ([]wire.Neighbour, error) {
	if !svc.requireLoggedIn() {
		return nil, ErrNoActiveSession
	}
	return svc.sess.FetchAllNeighbours(ctx, prefixLen)
}

// RequestACL fetches the access-control list of the currently logged-in
// admin session.
func (svc *Service) RequestACL(ctx context.Context) ([]wire.ACLEntry, error) {
	if !svc.requireLoggedIn() {
		return nil, ErrNoActiveSession
	}
	return svc.sess.GetACL(ctx)
}

// RequestMMA fetches min/max/avg telemetry summaries of the currently
// logged-in admin session.
func (svc *Service) RequestMMA(ctx context.Context) ([]wire.MMAEntry, error) {
	if !svc.requireLoggedIn() {
		return nil, ErrNoActiveSession
	}
	return svc.sess.GetMMA(ctx)
}

func (svc *Service) requireLoggedIn() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state.LoggedIn
}

// State returns a snapshot of the current admin session.
func (svc *Service) State() State {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state
}

// LastKeepAlive returns the timestamp of the most recent keep-alive ack,
// or the zero time if none has arrived yet (spec §4.11).
func (svc *Service) LastKeepAlive() time.Time {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state.LastKeepAlive
}
