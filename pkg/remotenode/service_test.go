package remotenode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikewren/PocketMesh-sub009/pkg/session"
	"github.com/mikewren/PocketMesh-sub009/pkg/transport"
	"github.com/mikewren/PocketMesh-sub009/pkg/wire"
)

// fakeTransport mirrors pkg/session's test double.
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
		frames: make(chan []byte, 64),
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

func loginResultPayload(permLevel uint8, sessionID uint32) []byte {
	p := []byte{permLevel, 0, 0, 0, 0}
	p[1] = byte(sessionID)
	p[2] = byte(sessionID >> 8)
	p[3] = byte(sessionID >> 16)
	p[4] = byte(sessionID >> 24)
	return p
}

func statusPushPayload(prefix [6]byte, batteryMilliV uint16) []byte {
	const fixedFieldsLen = 2 + 2 + 2 + 2 + 4*8 + 2 + 2 + 2 + 2
	p := make([]byte, 1+6+fixedFieldsLen+4) // +4: trailing rxAirtime u32
	copy(p[1:7], prefix[:])
	p[7] = byte(batteryMilliV)
	p[8] = byte(batteryMilliV >> 8)
	return p
}

func keepAliveAckPayload(at uint32) []byte {
	return []byte{byte(at), byte(at >> 8), byte(at >> 16), byte(at >> 24)}
}

func TestLoginFiresOnLoginResultAndMarksSessionActive(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)

	resultCh := make(chan struct {
		to        [6]byte
		permLevel uint8
		sessionID uint32
	}, 1)
	svc := New(s, Callbacks{
		OnLoginResult: func(to [6]byte, permLevel uint8, sessionID uint32) {
			resultCh <- struct {
				to        [6]byte
				permLevel uint8
				sessionID uint32
			}{to, permLevel, sessionID}
		},
	})
	svc.Start()
	defer svc.Stop()

	to := [6]byte{1, 2, 3, 4, 5, 6}
	go func() {
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespSent, append([]byte{0x00, 0, 0, 0, 0}, 0, 0, 0, 0)[:9])
	}()
	if err := svc.Login(context.Background(), to, "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	ft.push(wire.PushLoginResult, loginResultPayload(3, 0xAABBCCDD))

	select {
	case res := <-resultCh:
		if res.to != to {
			t.Errorf("to = %v, want %v", res.to, to)
		}
		if res.permLevel != 3 {
			t.Errorf("permLevel = %d, want 3", res.permLevel)
		}
		if res.sessionID != 0xAABBCCDD {
			t.Errorf("sessionID = %#x, want 0xaabbccdd", res.sessionID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnLoginResult")
	}

	if !svc.State().LoggedIn {
		t.Error("expected State().LoggedIn to be true")
	}
}

func TestRequestNeighboursRequiresActiveSession(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)
	svc := New(s, Callbacks{})
	svc.Start()
	defer svc.Stop()

	if _, err := svc.RequestNeighbours(context.Background(), 0); err != ErrNoActiveSession {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestStatusResponseCorrelatesByPubkeyPrefix(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)

	statusCh := make(chan *wire.StatusResponse, 1)
	svc := New(s, Callbacks{
		OnStatusResponse: func(sr *wire.StatusResponse) { statusCh <- sr },
	})
	svc.Start()
	defer svc.Stop()

	to := [6]byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	go func() {
		time.Sleep(10 * time.Millisecond)
		ft.push(wire.RespSent, append([]byte{0x00, 0, 0, 0, 0}, 0, 0, 0, 0)[:9])
	}()
	if err := svc.RequestStatus(context.Background(), to); err != nil {
		t.Fatalf("RequestStatus failed: %v", err)
	}

	ft.push(wire.PushStatusPush, statusPushPayload(to, 3700))

	select {
	case sr := <-statusCh:
		if sr.PubkeyPrefix != to {
			t.Errorf("PubkeyPrefix = %v, want %v", sr.PubkeyPrefix, to)
		}
		if sr.BatteryMilliV != 3700 {
			t.Errorf("BatteryMilliV = %d, want 3700", sr.BatteryMilliV)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnStatusResponse")
	}
}

func TestKeepAliveUpdatesLastKeepAlive(t *testing.T) {
	ft := newFakeTransport()
	s := startSession(t, ft)
	svc := New(s, Callbacks{})
	svc.Start()
	defer svc.Stop()

	if !svc.LastKeepAlive().IsZero() {
		t.Fatal("expected zero LastKeepAlive before any keep-alive ack")
	}

	ft.push(wire.PushKeepAliveAck, keepAliveAckPayload(12345))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !svc.LastKeepAlive().IsZero() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for LastKeepAlive to update")
}
