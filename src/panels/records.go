package panels

import (
	"strconv"

	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Record adapters: wrap stream payloads so the reconciler can key them.
// -----------------------------------------------------------------------------

type OrderRecord struct {
	models.MOrderEvent
}

func (r OrderRecord) Key() string {
	return strconv.FormatInt(r.ID, 10)
}

// -----------------------------------------------------------------------------

type PositionRecord struct {
	models.MPosition
}

func (r PositionRecord) Key() string {
	return r.Token
}
