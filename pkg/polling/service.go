package polling

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// MessageDrainer re-enters the messages phase of a sync sequence, draining
// the device's queue until it reports empty. *sync.Coordinator satisfies
// this directly via RunMessagesPhase.
type MessageDrainer interface {
	RunMessagesPhase(ctx context.Context) error
}

// Callbacks are the application-facing notifications for drain outcomes.
type Callbacks struct {
	OnDrainStarted func()
	OnDrainError   func(err error)
}

// Service listens for MSG_WAITING pushes and re-enters the messages phase
// each time one arrives. Create with New, call Start to begin listening.
type Service struct {
	sess  *session.Session
	drain MessageDrainer
	cb    Callbacks

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// New creates a Service that drains drain whenever sess reports
// MSG_WAITING.
func New(sess *session.Session, drain MessageDrainer, cb Callbacks) *Service {
	return &Service{sess: sess, drain: drain, cb: cb}
}

// Start launches the background listener. Calling Start twice is a no-op.
func (svc *Service) Start() {
	if svc.running.Swap(true) {
		return
	}
	svc.ctx, svc.cancel = context.WithCancel(context.Background())
	svc.wg.Add(1)
	go svc.listen()
}

// Stop cancels the background listener and waits for it to exit. A drain
// already in progress is allowed to finish.
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
			if ev.Kind == wire.EventMessageWaiting {
				svc.runDrain()
			}
		case <-svc.ctx.Done():
			return
		}
	}
}

func (svc *Service) runDrain() {
	if svc.cb.OnDrainStarted != nil {
		svc.cb.OnDrainStarted()
	}
	if err := svc.drain.RunMessagesPhase(svc.ctx); err != nil && svc.cb.OnDrainError != nil {
		svc.cb.OnDrainError(err)
	}
}
