package channel

import (
	"sync"
	"time"

	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Channel owns one logical subscription to a remote streaming endpoint:
// the transport handle, the reconnect schedule and the outbound buffer.
// All mutable state lives behind one mutex; timer and read-loop callbacks
// carry a generation number so that anything outliving a Disconnect() or a
// fresh Connect() becomes a no-op instead of racing the new cycle.
// -----------------------------------------------------------------------------

type Channel struct {
	name     string
	endpoint string
	dialer   interfaces.IDialer
	logger   *logger.Logger

	baseDelay   time.Duration
	maxAttempts int

	// OnMessage receives every inbound frame. Decode failures are the
	// consumer's problem and must never tear the channel down.
	OnMessage func(data []byte)

	// OnDown fires exactly once when the retry ceiling is exceeded.
	OnDown func(err error)

	// OnStateChange is invoked (outside the channel lock) after every
	// state transition.
	OnStateChange func(state State)

	mu         sync.Mutex
	state      State
	attempts   int
	lastSeen   time.Time
	transport  interfaces.ITransport
	queue      OutboundQueue
	retryTimer *time.Timer
	generation uint64
	sessionID  string
}

// -----------------------------------------------------------------------------

// NewChannel creates a channel for one endpoint. Connect must be called
// explicitly; a freshly created channel is in StateClosed.
func NewChannel(name, endpoint string, cfg *models.MConnectionConfig, dialer interfaces.IDialer, log *logger.Logger) *Channel {
	return &Channel{
		name:        name,
		endpoint:    endpoint,
		dialer:      dialer,
		logger:      log,
		baseDelay:   time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		maxAttempts: cfg.MaxAttempts,
		state:       StateClosed,
	}
}

// -----------------------------------------------------------------------------

// Connect starts a connection cycle. Calling it while a dial is pending or
// the channel is open is a no-op. From StateClosed or StateGivenUp it
// begins a fresh cycle with a cleared attempt counter; from StateRetrying
// it skips the remaining backoff and dials at once.
func (c *Channel) Connect() {
	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateOpen, StateClosing:
		c.mu.Unlock()
		return
	}

	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.state == StateClosed || c.state == StateGivenUp {
		c.attempts = 0
	}
	c.generation++
	gen := c.generation
	c.state = StateConnecting
	c.mu.Unlock()

	c.emit(StateConnecting)
	go c.dial(gen)
}

// -----------------------------------------------------------------------------

// SendMessage writes the payload immediately when the channel is open and
// buffers it otherwise. It never fails: a write error flips the channel
// into its retry path and the payload is kept for redelivery.
func (c *Channel) SendMessage(data []byte) {
	c.mu.Lock()
	if c.state == StateOpen && c.transport != nil {
		if err := c.transport.WriteMessage(data); err != nil {
			c.queue.Push(data)
			c.logger.Warning("%s : write failed, buffering payload: %v", c.name, err)
			c.failLocked(err)
			return
		}
		c.mu.Unlock()
		return
	}
	c.queue.Push(data)
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Disconnect is the explicit caller-initiated teardown. Any armed reconnect
// timer is cancelled before this returns; no reconnect fires afterwards.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.generation++
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	t := c.transport
	c.transport = nil
	if t != nil {
		c.state = StateClosing
		c.mu.Unlock()
		c.emit(StateClosing)
		t.Close()
		c.mu.Lock()
	}
	c.state = StateClosed
	c.mu.Unlock()

	c.emit(StateClosed)
	c.logger.Info("%s : disconnected from %s", c.name, c.endpoint)
}

// -----------------------------------------------------------------------------
// Liveness accessors (consumed by the heartbeat monitor)
// -----------------------------------------------------------------------------

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) Endpoint() string {
	return c.endpoint
}

func (c *Channel) LastSeenAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateOpen
}

// -----------------------------------------------------------------------------

// StateNow returns the current connection state.
func (c *Channel) StateNow() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// -----------------------------------------------------------------------------

// QueueDepth returns the number of buffered outbound payloads.
func (c *Channel) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// -----------------------------------------------------------------------------

// Status returns an externally visible snapshot of the channel.
func (c *Channel) Status() models.MChannelStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last int64
	if !c.lastSeen.IsZero() {
		last = c.lastSeen.UnixMilli()
	}
	return models.MChannelStatus{
		Name:       c.name,
		Endpoint:   c.endpoint,
		State:      c.state.String(),
		Attempts:   c.attempts,
		LastSeen:   last,
		QueueDepth: c.queue.Len(),
		SessionID:  c.sessionID,
	}
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// dial performs one connect attempt. Runs on its own goroutine so callers
// never block on network I/O.
func (c *Channel) dial(gen uint64) {
	t, err := c.dialer.Dial(c.endpoint, interfaces.MDialOptions{OnControl: c.touch})

	c.mu.Lock()
	if gen != c.generation {
		// A Disconnect or fresh Connect superseded this attempt.
		c.mu.Unlock()
		if t != nil {
			t.Close()
		}
		return
	}
	if err != nil {
		c.logger.Warning("%s : connect to %s failed: %v", c.name, c.endpoint, err)
		c.failLocked(err)
		return
	}
	if c.state != StateConnecting {
		c.mu.Unlock()
		t.Close()
		return
	}

	c.transport = t
	c.attempts = 0
	c.sessionID = uuid.NewString()
	c.lastSeen = time.Now()
	c.state = StateOpen

	// Drain the outbound buffer strictly in order. Holding the lock means
	// each write returns before the next starts and no SendMessage can
	// interleave with the drain.
	pending := c.queue.Drain()
	for i, item := range pending {
		if werr := c.transport.WriteMessage(item); werr != nil {
			c.queue.Requeue(pending[i:])
			c.logger.Warning("%s : drain failed after %d payloads: %v", c.name, i, werr)
			c.failLocked(werr)
			return
		}
	}
	c.mu.Unlock()

	c.emit(StateOpen)
	c.logger.Info("%s : connected to %s (session %s, drained %d payloads)", c.name, c.endpoint, c.sessionID, len(pending))
	go c.readLoop(t, gen)
}

// -----------------------------------------------------------------------------

// readLoop pumps inbound frames until the transport errors out.
func (c *Channel) readLoop(t interfaces.ITransport, gen uint64) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if gen != c.generation || c.state != StateOpen {
				// Teardown already handled by Disconnect or a write failure.
				c.mu.Unlock()
				return
			}
			c.logger.Warning("%s : transport closed: %v", c.name, err)
			c.failLocked(err)
			return
		}

		c.touch()
		if cb := c.OnMessage; cb != nil {
			cb(data)
		}
	}
}

// -----------------------------------------------------------------------------

// failLocked handles a transport failure. The caller must hold the lock
// and must have validated the generation; failLocked unlocks.
func (c *Channel) failLocked(err error) {
	if c.transport != nil {
		c.transport.Close()
		c.transport = nil
	}

	c.attempts++
	if c.attempts > c.maxAttempts {
		c.state = StateGivenUp
		down := c.OnDown
		c.mu.Unlock()

		c.emit(StateGivenUp)
		c.logger.Error("%s : giving up on %s after %d attempts: %v", c.name, c.endpoint, c.attempts-1, err)
		if down != nil {
			down(err)
		}
		return
	}

	delay := Backoff(c.baseDelay, c.attempts)
	gen := c.generation
	c.state = StateRetrying
	c.retryTimer = time.AfterFunc(delay, func() { c.retry(gen) })
	c.mu.Unlock()

	c.emit(StateRetrying)
	c.logger.Info("%s : reconnecting to %s in %v (attempt %d/%d)", c.name, c.endpoint, delay, c.attempts, c.maxAttempts)
}

// -----------------------------------------------------------------------------

// retry fires from the reconnect timer.
func (c *Channel) retry(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateRetrying {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	c.state = StateConnecting
	c.mu.Unlock()

	c.emit(StateConnecting)
	go c.dial(gen)
}

// -----------------------------------------------------------------------------

// touch records inbound traffic, including protocol-level pings.
func (c *Channel) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (c *Channel) emit(s State) {
	if cb := c.OnStateChange; cb != nil {
		cb(s)
	}
}
