package panels

import (
	"sync"

	"dashboard-sync/src/reconcile"
)

// -----------------------------------------------------------------------------
// TableSurface is the in-process rendering target: an ordered list of rows
// that the status server serializes for the browser. It only mutates the
// rows the reconciler tells it to.
// -----------------------------------------------------------------------------

type TableSurface struct {
	mu    sync.RWMutex
	rows  map[string]reconcile.Record
	order []string
}

// -----------------------------------------------------------------------------

func NewTableSurface() *TableSurface {
	return &TableSurface{
		rows: make(map[string]reconcile.Record),
	}
}

// -----------------------------------------------------------------------------

func (s *TableSurface) Create(rec reconcile.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	if _, exists := s.rows[key]; !exists {
		s.order = append(s.order, key)
	}
	s.rows[key] = rec
}

func (s *TableSurface) Update(rec reconcile.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.Key()] = rec
}

func (s *TableSurface) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[key]; !exists {
		return
	}
	delete(s.rows, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// -----------------------------------------------------------------------------

// Rows returns the rendered rows in creation order.
func (s *TableSurface) Rows() []reconcile.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]reconcile.Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.rows[key])
	}
	return out
}

// -----------------------------------------------------------------------------

// Len returns the number of rendered rows.
func (s *TableSurface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
