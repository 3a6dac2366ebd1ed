package models

// -----------------------------------------------------------------------------
// Local Status Feed Structures (pushed to /ws subscribers)
// -----------------------------------------------------------------------------

type MStatusUpdate struct {
	Type      string           `json:"type"` // "INITIAL" or "UPDATE"
	Channels  []MChannelStatus `json:"channels"`
	Panels    map[string]int   `json:"panels"` // panel name -> row count
	Timestamp int64            `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MToast is a transient user-visible notification (e.g. a failed save).
type MToast struct {
	Type      string `json:"type"` // always "TOAST"
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
