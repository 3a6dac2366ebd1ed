package models

// MChannelStatus is the externally visible snapshot of one channel.
type MChannelStatus struct {
	Name       string `json:"name"`
	Endpoint   string `json:"endpoint"`
	State      string `json:"state"`
	Attempts   int    `json:"attempts"`
	LastSeen   int64  `json:"last_seen"` // unix ms, 0 when never
	QueueDepth int    `json:"queue_depth"`
	Degraded   bool   `json:"degraded"`
	SessionID  string `json:"session_id"` // rotated on every successful open
}
