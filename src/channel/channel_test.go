package channel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeTransport struct {
	mu       sync.Mutex
	writes   [][]byte
	writeErr error

	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.done:
		return nil, errors.New("transport closed")
	}
}

func (t *fakeTransport) WriteMessage(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeErr != nil {
		return t.writeErr
	}
	t.writes = append(t.writes, data)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *fakeTransport) Writes() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.writes))
	copy(out, t.writes)
	return out
}

// -----------------------------------------------------------------------------

type fakeDialer struct {
	mu         sync.Mutex
	failures   int // dials to reject before succeeding
	dials      int
	transports []*fakeTransport
}

func (d *fakeDialer) Dial(endpoint string, opts interfaces.MDialOptions) (interfaces.ITransport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.dials <= d.failures {
		return nil, errors.New("dial refused")
	}
	t := newFakeTransport()
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func newTestChannel(dialer *fakeDialer, baseDelayMs, maxAttempts int) *Channel {
	cfg := &models.MConnectionConfig{
		BaseDelayMs:             baseDelayMs,
		MaxAttempts:             maxAttempts,
		HandshakeTimeoutSeconds: 1,
	}
	return NewChannel("test", "ws://remote/ws", cfg, dialer, logger.NewLogger("ERROR", "test"))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestSendBeforeOpenDrainsInOrder(t *testing.T) {
	dialer := &fakeDialer{}
	ch := newTestChannel(dialer, 1, 2)
	defer ch.Disconnect()

	ch.SendMessage([]byte("a"))
	ch.SendMessage([]byte("b"))
	ch.SendMessage([]byte("c"))

	if depth := ch.QueueDepth(); depth != 3 {
		t.Fatalf("QueueDepth before connect = %d, want 3", depth)
	}

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)

	tr := dialer.last()
	waitFor(t, "queued payloads drained", func() bool { return len(tr.Writes()) == 3 })

	for i, want := range []string{"a", "b", "c"} {
		if got := string(tr.Writes()[i]); got != want {
			t.Errorf("write %d = %q, want %q", i, got, want)
		}
	}
	if depth := ch.QueueDepth(); depth != 0 {
		t.Errorf("QueueDepth after drain = %d, want 0", depth)
	}

	// Live sends go straight to the transport.
	ch.SendMessage([]byte("d"))
	waitFor(t, "live payload written", func() bool { return len(tr.Writes()) == 4 })
}

func TestGiveUpFiresExactlyOnce(t *testing.T) {
	dialer := &fakeDialer{failures: 1000}
	ch := newTestChannel(dialer, 1, 2)

	var downs int32
	ch.OnDown = func(err error) { atomic.AddInt32(&downs, 1) }

	ch.Connect()
	waitFor(t, "give-up state", func() bool { return ch.StateNow() == StateGivenUp })

	// Initial dial plus maxAttempts retries, then nothing more.
	time.Sleep(20 * time.Millisecond)
	if got := dialer.dialCount(); got != 3 {
		t.Errorf("dial count = %d, want 3", got)
	}
	if got := atomic.LoadInt32(&downs); got != 1 {
		t.Errorf("down callback fired %d times, want 1", got)
	}
}

func TestConnectIsIdempotentWhileOpen(t *testing.T) {
	dialer := &fakeDialer{}
	ch := newTestChannel(dialer, 1, 2)
	defer ch.Disconnect()

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)

	ch.Connect()
	time.Sleep(10 * time.Millisecond)

	if got := dialer.dialCount(); got != 1 {
		t.Errorf("dial count = %d, want 1", got)
	}
	if !ch.IsOpen() {
		t.Error("channel no longer open after redundant Connect")
	}
}

func TestConnectFromGivenUpStartsFreshCycle(t *testing.T) {
	dialer := &fakeDialer{failures: 3}
	ch := newTestChannel(dialer, 1, 2)
	defer ch.Disconnect()

	ch.Connect()
	waitFor(t, "give-up state", func() bool { return ch.StateNow() == StateGivenUp })

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)

	if got := ch.Status().Attempts; got != 0 {
		t.Errorf("attempts after successful reconnect = %d, want 0", got)
	}
}

func TestDisconnectCancelsPendingRetry(t *testing.T) {
	dialer := &fakeDialer{failures: 1000}
	// Long base delay keeps the retry timer pending while we disconnect.
	ch := newTestChannel(dialer, 60000, 5)

	ch.Connect()
	waitFor(t, "retrying state", func() bool { return ch.StateNow() == StateRetrying })

	ch.Disconnect()
	if got := ch.StateNow(); got != StateClosed {
		t.Fatalf("state after disconnect = %v, want closed", got)
	}

	time.Sleep(50 * time.Millisecond)
	if got := dialer.dialCount(); got != 1 {
		t.Errorf("dial count after disconnect = %d, want 1", got)
	}
}

func TestTransportDropTriggersReconnect(t *testing.T) {
	dialer := &fakeDialer{}
	ch := newTestChannel(dialer, 1, 3)
	defer ch.Disconnect()

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)
	first := dialer.last()

	first.Close()
	waitFor(t, "second dial", func() bool { return dialer.dialCount() == 2 })
	waitFor(t, "channel reopened", ch.IsOpen)

	if got := ch.Status().Attempts; got != 0 {
		t.Errorf("attempts after reconnect = %d, want 0", got)
	}
	if dialer.last() == first {
		t.Error("expected a fresh transport after the drop")
	}
}

func TestInboundFramesReachCallbackAndTouchLiveness(t *testing.T) {
	dialer := &fakeDialer{}
	ch := newTestChannel(dialer, 1, 2)
	defer ch.Disconnect()

	var mu sync.Mutex
	var got []string
	ch.OnMessage = func(data []byte) {
		mu.Lock()
		got = append(got, string(data))
		mu.Unlock()
	}

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)

	before := ch.LastSeenAt()
	time.Sleep(2 * time.Millisecond)

	tr := dialer.last()
	tr.inbound <- []byte("one")
	tr.inbound <- []byte("two")

	waitFor(t, "frames delivered", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	if got[0] != "one" || got[1] != "two" {
		t.Errorf("frames = %v, want [one two]", got)
	}
	mu.Unlock()

	if !ch.LastSeenAt().After(before) {
		t.Error("lastSeen not advanced by inbound traffic")
	}
}

func TestStatusSnapshot(t *testing.T) {
	dialer := &fakeDialer{}
	ch := newTestChannel(dialer, 1, 2)
	defer ch.Disconnect()

	st := ch.Status()
	if st.State != "closed" || st.Name != "test" {
		t.Fatalf("initial status = %+v", st)
	}
	if st.SessionID != "" {
		t.Error("session id set before first open")
	}

	ch.Connect()
	waitFor(t, "channel open", ch.IsOpen)

	st = ch.Status()
	if st.State != "open" {
		t.Errorf("state = %q, want open", st.State)
	}
	if st.SessionID == "" {
		t.Error("session id empty after open")
	}
	if st.LastSeen == 0 {
		t.Error("lastSeen not set after open")
	}
}
