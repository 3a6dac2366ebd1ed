package streams

import (
	"encoding/json"
	"fmt"

	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Stream decoding. Each channel carries exactly one payload shape, so the
// channel kind from the config selects the decoder; there is no
// self-describing envelope on the wire.
// -----------------------------------------------------------------------------

const (
	KindOrders    = "orders"
	KindPositions = "positions"
	KindFeatures  = "features"
	KindPosterior = "posterior"
	KindDashboard = "dashboard"
)

// Event is one decoded inbound frame. Exactly one payload field is non-nil,
// selected by Kind.
type Event struct {
	Kind      string
	Order     *models.MOrderEvent
	Positions map[string]models.MPosition
	Feature   *models.MFeatureUpdate
	Posterior *models.MPosteriorUpdate
	Dashboard *models.MDashboardUpdate
}

// -----------------------------------------------------------------------------

// Decode parses one frame from a channel of the given kind.
func Decode(kind string, data []byte) (*Event, error) {
	switch kind {
	case KindOrders:
		var order models.MOrderEvent
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order event: %w", err)
		}
		return &Event{Kind: kind, Order: &order}, nil

	case KindPositions:
		var positions map[string]models.MPosition
		if err := json.Unmarshal(data, &positions); err != nil {
			return nil, fmt.Errorf("failed to decode positions snapshot: %w", err)
		}
		return &Event{Kind: kind, Positions: positions}, nil

	case KindFeatures:
		var feature models.MFeatureUpdate
		if err := json.Unmarshal(data, &feature); err != nil {
			return nil, fmt.Errorf("failed to decode feature update: %w", err)
		}
		return &Event{Kind: kind, Feature: &feature}, nil

	case KindPosterior:
		var posterior models.MPosteriorUpdate
		if err := json.Unmarshal(data, &posterior); err != nil {
			return nil, fmt.Errorf("failed to decode posterior update: %w", err)
		}
		return &Event{Kind: kind, Posterior: &posterior}, nil

	case KindDashboard:
		var dashboard models.MDashboardUpdate
		if err := json.Unmarshal(data, &dashboard); err != nil {
			return nil, fmt.Errorf("failed to decode dashboard update: %w", err)
		}
		return &Event{Kind: kind, Dashboard: &dashboard}, nil

	default:
		return nil, fmt.Errorf("unknown channel kind %q", kind)
	}
}

// -----------------------------------------------------------------------------

// IsKnownKind reports whether a config kind has a decoder.
func IsKnownKind(kind string) bool {
	switch kind {
	case KindOrders, KindPositions, KindFeatures, KindPosterior, KindDashboard:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// REST snapshot decoding (used when seeding panels before the stream opens)
// -----------------------------------------------------------------------------

// DecodeOrderList parses the orders snapshot from the REST endpoint.
func DecodeOrderList(data []byte) ([]models.MOrderEvent, error) {
	var orders []models.MOrderEvent
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders snapshot: %w", err)
	}
	return orders, nil
}

// -----------------------------------------------------------------------------

// DecodePositionMap parses the positions snapshot from the REST endpoint.
func DecodePositionMap(data []byte) (map[string]models.MPosition, error) {
	var positions map[string]models.MPosition
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions snapshot: %w", err)
	}
	return positions, nil
}

// -----------------------------------------------------------------------------

// DecodeState parses the remote control-state document used to seed the
// settings editor.
func DecodeState(data []byte) (map[string]interface{}, error) {
	var state map[string]interface{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state document: %w", err)
	}
	return state, nil
}
