package channel

import (
	"fmt"
	"sort"
	"sync"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Registry holds every configured channel and fans lifecycle operations out
// to all of them.
// -----------------------------------------------------------------------------

type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	order    []string
	logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		channels: make(map[string]*Channel),
		logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Add registers a channel under its name. Names must be unique.
func (r *Registry) Add(c *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.channels[name]; exists {
		return fmt.Errorf("channel %q already registered", name)
	}
	r.channels[name] = c
	r.order = append(r.order, name)
	return nil
}

// -----------------------------------------------------------------------------

// Get returns the channel registered under name.
func (r *Registry) Get(name string) (*Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.channels[name]
	if !exists {
		return nil, fmt.Errorf("unknown channel %q", name)
	}
	return c, nil
}

// -----------------------------------------------------------------------------

// All returns the channels in registration order.
func (r *Registry) All() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Channel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.channels[name])
	}
	return out
}

// -----------------------------------------------------------------------------

// ConnectAll starts a connection cycle on every channel.
func (r *Registry) ConnectAll() {
	for _, c := range r.All() {
		r.logger.Info("starting channel %s -> %s", c.Name(), c.Endpoint())
		c.Connect()
	}
}

// -----------------------------------------------------------------------------

// DisconnectAll tears every channel down. Safe to call more than once.
func (r *Registry) DisconnectAll() {
	for _, c := range r.All() {
		c.Disconnect()
	}
}

// -----------------------------------------------------------------------------

// Statuses returns a snapshot of every channel, sorted by name.
func (r *Registry) Statuses() []models.MChannelStatus {
	all := r.All()
	out := make([]models.MChannelStatus, 0, len(all))
	for _, c := range all {
		out = append(out, c.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
