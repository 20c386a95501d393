package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/transport"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// fakeTransport mirrors pkg/session's test double; messaging can't reuse
// the unexported one across package boundaries.
type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	frames chan []byte
	states chan transport.ConnState
	state  transport.ConnState
	closed bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames: make(chan []byte, 32),
		states: make(chan transport.ConnState, 4),
		state:  transport.StateReady,
	}
}

func (f *fakeTransport) Send(ctx context.Context, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return transport.ErrTransportClosed
	}
	f.sent = append(f.sent, append([]byte(nil), frame...))
	return nil
}

func (f *fakeTransport) ReceivedFrames() <-chan []byte               { return f.frames }
func (f *fakeTransport) ConnectionState() <-chan transport.ConnState { return f.states }
func (f *fakeTransport) State() transport.ConnState                  { return f.state }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) push(code wire.ResponseCode, payload []byte) {
	frame := append([]byte{byte(code)}, payload...)
	f.frames <- frame
}

func (f *fakeTransport) lastSent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func selfInfoPayload(name string) []byte {
	payload := make([]byte, 0, 64)
	payload = append(payload, 0x01, 20, 22)
	payload = append(payload, make([]byte, 32)...)
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, 0x00)
	payload = append(payload, 0x00)
	payload = append(payload, 0x00)
	payload = append(payload, 0x40, 0x39, 0x0e, 0x00)
	payload = append(payload, 0x40, 0x39, 0x0e, 0x00)
	payload = append(payload, 9, 5)
	payload = append(payload, []byte(name)...)
	payload = append(payload, 0)
	return payload
}

func startSession(t *testing.T, ft *fakeTransport) *session.Session {
	t.Helper()
	s := session.New(ft, nil, "conn-1")
	t.Cleanup(func() { s.Close() })

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Start(context.Background(), "")
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	ft.push(wire.RespSelfInfo, selfInfoPayload("node1"))

	if err := <-errCh; err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return s
}

// sentMessagePayload builds a RespSent payload: type, 4-byte ack code, 4-byte
// suggested timeout (ms).
func sentMessagePayload(ackCode uint32, suggestedTimeoutMs uint32) []byte {
	p := make([]byte, 9)
	p[0] = 0x00
	p[1] = byte(ackCode)
	p[2] = byte(ackCode >> 8)
	p[3] = byte(ackCode >> 16)
	p[4] = byte(ackCode >> 24)
	p[5] = byte(suggestedTimeoutMs)
	p[6] = byte(suggestedTimeoutMs >> 8)
	p[7] = byte(suggestedTimeoutMs >> 16)
	p[8] = byte(suggestedTimeoutMs >> 24)
	return p
}

func ackConfirmedPayload(ackCode uint32) []byte {
	return []byte{byte(ackCode), byte(ackCode >> 8), byte(ackCode >> 16), byte(ackCode >> 24)}
}

func TestAckTableInsertDeliver(t *testing.T) {
	tbl := newAckTable()
	e := tbl.insert(42, "msg-1", 0, time.Second)
	if tbl.count() != 1 {
		t.Fatalf("count = %d, want 1", tbl.count())
	}
	matched, _ := tbl.deliver(42)
	if !matched {
		t.Fatal("expected deliver to match")
	}
	select {
	case res := <-e.resultCh:
		if !res.delivered {
			t.Error("expected delivered=true")
		}
	default:
		t.Fatal("expected a result on resultCh")
	}
	if tbl.count() != 0 {
		t.Errorf("count = %d, want 0 after deliver", tbl.count())
	}
}

func TestAckTableDeliverUnknownCodeIsNoop(t *testing.T) {
	tbl := newAckTable()
	matched, _ := tbl.deliver(999)
	if matched {
		t.Error("expected no match for unknown ack code")
	}
}

func TestAckTableSweepExpired(t *testing.T) {
	tbl := newAckTable()
	e := tbl.insert(1, "msg-1", 0, -time.Second) // already expired
	n := tbl.sweepExpired(time.Now())
	if n != 1 {
		t.Fatalf("sweepExpired = %d, want 1", n)
	}
	select {
	case res := <-e.resultCh:
		if res.delivered {
			t.Error("expected delivered=false from sweep")
		}
	default:
		t.Fatal("expected a result on resultCh from sweep")
	}
	if tbl.count() != 0 {
		t.Errorf("count = %d, want 0 after sweep", tbl.count())
	}
}

func TestSendMessageWithRetryDeliversOnFirstAttempt(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)

	svc := New(s, Config{SweepInterval: 10 * time.Millisecond}, Callbacks{})
	svc.Start()
	defer svc.Stop()

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		id, err := svc.SendMessageWithRetry(context.Background(), [6]byte{1, 2, 3, 4, 5, 6}, "hi", 1000, SendParams{})
		resultCh <- id
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	ft.push(wire.RespSent, sentMessagePayload(0xAABBCCDD, 0))
	time.Sleep(10 * time.Millisecond)
	ft.push(wire.PushAckConfirmed, ackConfirmedPayload(0xAABBCCDD))

	if err := <-errCh; err != nil {
		t.Fatalf("SendMessageWithRetry failed: %v", err)
	}
	if id := <-resultCh; id == "" {
		t.Error("expected a non-empty message id")
	}
	if svc.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0 after delivery", svc.PendingCount())
	}
}

func TestSendMessageWithRetryExhaustsAndFails(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)

	var failed string
	var routingChanges int
	var mu sync.Mutex
	cb := Callbacks{
		OnMessageFailed: func(messageID string) {
			mu.Lock()
			failed = messageID
			mu.Unlock()
		},
		OnRoutingChanged: func(to [6]byte, isFlood bool) {
			mu.Lock()
			routingChanges++
			mu.Unlock()
		},
	}
	svc := New(s, Config{SweepInterval: 5 * time.Millisecond, FloodTimeout: 20 * time.Millisecond}, cb)
	svc.Start()
	defer svc.Stop()

	params := SendParams{
		MaxAttempts: 3,
		FloodAfter:  1,
		TimeoutHint: 20 * time.Millisecond,
	}

	// Reply to each request in the order SendMessageWithRetry issues them:
	// attempt 0 (direct SendMessage), a ResetPath crossing into flood
	// routing ahead of attempt 1, then attempts 1 and 2 (flood
	// SendMessage). No PushAckConfirmed is ever sent, so every attempt
	// times out via the sweeper and the whole call eventually fails.
	go func() {
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespSent, sentMessagePayload(0x1000, 0)) // attempt 0
		time.Sleep(30 * time.Millisecond)
		ft.push(wire.RespOK, nil) // ResetPath
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespSent, sentMessagePayload(0x1001, 0)) // attempt 1
		time.Sleep(30 * time.Millisecond)
		ft.push(wire.RespSent, sentMessagePayload(0x1002, 0)) // attempt 2
	}()

	id, err := svc.SendMessageWithRetry(context.Background(), [6]byte{9, 9, 9, 9, 9, 9}, "hi", 1000, params)
	if err != ErrMessageFailed {
		t.Fatalf("expected ErrMessageFailed, got %v", err)
	}
	if id == "" {
		t.Error("expected a non-empty message id even on failure")
	}

	mu.Lock()
	defer mu.Unlock()
	if failed != id {
		t.Errorf("OnMessageFailed called with %q, want %q", failed, id)
	}
	if routingChanges == 0 {
		t.Error("expected OnRoutingChanged to fire when crossing into flood attempts")
	}
}

func TestManualRetryForcesFloodFromFirstAttempt(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)

	svc := New(s, Config{SweepInterval: 10 * time.Millisecond}, Callbacks{})
	svc.Start()
	defer svc.Stop()

	go func() {
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespOK, nil) // ResetPath's expected response
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespSent, sentMessagePayload(0x55, 0))
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.PushAckConfirmed, ackConfirmedPayload(0x55))
	}()

	id, err := svc.ManualRetry(context.Background(), [6]byte{1, 1, 1, 1, 1, 1}, "retry", 2000, SendParams{})
	if err != nil {
		t.Fatalf("ManualRetry failed: %v", err)
	}
	if id == "" {
		t.Error("expected a non-empty message id")
	}

	sent := ft.lastSent()
	if len(sent) == 0 {
		t.Fatal("expected a frame to have been sent")
	}
}
