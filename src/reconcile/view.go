package reconcile

// -----------------------------------------------------------------------------
// Keyed incremental reconciliation. A View tracks which record keys a
// rendering surface currently holds and, given the next full snapshot,
// issues the minimal create/update/remove calls instead of rebuilding the
// surface from scratch. Input order is preserved: callers sort their
// snapshot before reconciling and the surface receives rows in that order.
// -----------------------------------------------------------------------------

// Record is one keyed row of a snapshot.
type Record interface {
	// Key must be non-empty and stable across updates of the same entity.
	Key() string
}

// ISurface receives the reconciliation output. Implementations render rows
// however they like; the View only guarantees the call sequence.
type ISurface interface {
	Create(rec Record)
	Update(rec Record)
	Remove(key string)
}

// Stats counts the operations one Reconcile pass issued.
type Stats struct {
	Created int
	Updated int
	Removed int
}

// -----------------------------------------------------------------------------

type View struct {
	surface ISurface
	known   map[string]Record
	order   []string
}

// -----------------------------------------------------------------------------

func NewView(surface ISurface) *View {
	return &View{
		surface: surface,
		known:   make(map[string]Record),
	}
}

// -----------------------------------------------------------------------------

// Reconcile applies the snapshot to the surface. Records with an empty key
// are skipped; when a key appears twice the later record wins and counts as
// an update. An empty snapshot empties the surface and leaves the view
// reusable. Reconciling the same snapshot twice is a pure update pass with
// no creates or removes.
func (v *View) Reconcile(records []Record) Stats {
	var stats Stats

	next := make(map[string]Record, len(records))
	nextOrder := make([]string, 0, len(records))

	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			continue
		}
		if _, dup := next[key]; dup {
			// Same key twice in one snapshot: later record wins.
			next[key] = rec
			v.surface.Update(rec)
			stats.Updated++
			continue
		}
		next[key] = rec
		nextOrder = append(nextOrder, key)

		if _, exists := v.known[key]; exists {
			v.surface.Update(rec)
			stats.Updated++
		} else {
			v.surface.Create(rec)
			stats.Created++
		}
	}

	// Remove rows whose key vanished, in the order they were rendered.
	for _, key := range v.order {
		if _, keep := next[key]; !keep {
			v.surface.Remove(key)
			stats.Removed++
		}
	}

	v.known = next
	v.order = nextOrder
	return stats
}

// -----------------------------------------------------------------------------

// Len returns the number of rendered rows.
func (v *View) Len() int {
	return len(v.known)
}

// -----------------------------------------------------------------------------

// Keys returns the rendered keys in surface order.
func (v *View) Keys() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// -----------------------------------------------------------------------------

// Get returns the record currently rendered under key.
func (v *View) Get(key string) (Record, bool) {
	rec, exists := v.known[key]
	return rec, exists
}
