package network

import (
	"encoding/json"
	"fmt"

	"dashboard-sync/src/interfaces"
)

// -----------------------------------------------------------------------------
// StateSaver pushes partial control-state documents to the remote service.
// Plugged into the autosave queue as its save backend.
// -----------------------------------------------------------------------------

type StateSaver struct {
	nm interfaces.INetworkManager
}

// -----------------------------------------------------------------------------

func NewStateSaver(nm interfaces.INetworkManager) *StateSaver {
	return &StateSaver{nm: nm}
}

// -----------------------------------------------------------------------------

// Save POSTs the change-set to the control-state endpoint.
func (s *StateSaver) Save(changes map[string]interface{}) error {
	body, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("failed to encode state change-set: %w", err)
	}
	if _, err := s.nm.Post("/state", body); err != nil {
		return err
	}
	return nil
}
