package models

// -----------------------------------------------------------------------------
// Stream Payload Structures (Matches remote service JSON exactly)
// -----------------------------------------------------------------------------

// MOrderEvent represents a single order as emitted on the orders stream.
type MOrderEvent struct {
	ID        int64   `json:"id"`
	Token     string  `json:"token"`
	Quantity  float64 `json:"quantity"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Slippage  float64 `json:"slippage"`
	Fee       float64 `json:"fee"`
	Timestamp int64   `json:"timestamp"`
	Status    string  `json:"status"`
}

// -----------------------------------------------------------------------------

// MPosition represents one open position keyed by token symbol.
type MPosition struct {
	Token        string  `json:"token"`
	Quantity     float64 `json:"qty"`
	EntryPrice   float64 `json:"entry_price"`
	CurrentPrice float64 `json:"current_price"`
	Unrealized   float64 `json:"unrealized"`
}

// -----------------------------------------------------------------------------

// MFeatureUpdate carries one feature vector from the features stream.
type MFeatureUpdate struct {
	Features  []float64 `json:"features"`
	Timestamp int64     `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MPosteriorUpdate carries regime probabilities from the posterior stream.
type MPosteriorUpdate struct {
	Rug       float64 `json:"rug"`
	Trend     float64 `json:"trend"`
	Revert    float64 `json:"revert"`
	Chop      float64 `json:"chop"`
	Timestamp int64   `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MRiskSummary mirrors the risk block of the aggregated dashboard payload.
type MRiskSummary struct {
	Equity     float64 `json:"equity"`
	Unrealized float64 `json:"unrealized"`
	Drawdown   float64 `json:"drawdown"`
	Realized   float64 `json:"realized"`
	VaR        float64 `json:"var"`
	ES         float64 `json:"es"`
	Sharpe     float64 `json:"sharpe"`
}

// -----------------------------------------------------------------------------

// MDashboardUpdate is the aggregated payload from /dashboard/ws.
// Features and Posterior may be nil while the remote engine warms up.
type MDashboardUpdate struct {
	Features  []float64            `json:"features"`
	Posterior *MPosteriorUpdate    `json:"posterior"`
	Positions map[string]MPosition `json:"positions"`
	Orders    []MOrderEvent        `json:"orders"`
	Risk      MRiskSummary         `json:"risk"`
	Timestamp int64                `json:"timestamp"`
}
