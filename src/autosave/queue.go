package autosave

import (
	"fmt"
	"sync"
	"time"

	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Debounced single-flight autosave. Edits accumulate into one pending
// change-set; the debounce timer collapses bursts into a single save, and at
// most one save is on the wire at any time. Edits arriving mid-flight wait
// for the flight to land and then go out as one follow-up save. A failed
// save is not retried: the pending draft is dropped, the editor is reverted
// to the last committed state and the user is notified.
// -----------------------------------------------------------------------------

// ISaver pushes one partial change-set to the remote service.
type ISaver interface {
	Save(changes map[string]interface{}) error
}

type Queue struct {
	debounce time.Duration
	saver    ISaver
	notifier interfaces.INotifier
	logger   *logger.Logger

	// OnCommit receives a copy of the committed state after each
	// successful save.
	OnCommit func(state map[string]interface{})

	// OnRevert receives a copy of the committed state when a save fails,
	// so the editor can roll back.
	OnRevert func(state map[string]interface{})

	mu         sync.Mutex
	committed  map[string]interface{}
	pending    map[string]interface{}
	timer      *time.Timer
	inFlight   bool
	generation uint64
	stopped    bool
}

// -----------------------------------------------------------------------------

// NewQueue creates an autosave queue seeded with the last known committed
// state.
func NewQueue(cfg *models.MAutosaveConfig, initial map[string]interface{}, saver ISaver, notifier interfaces.INotifier, log *logger.Logger) *Queue {
	return &Queue{
		debounce:  time.Duration(cfg.DebounceMs) * time.Millisecond,
		saver:     saver,
		notifier:  notifier,
		logger:    log,
		committed: copyState(initial),
	}
}

// -----------------------------------------------------------------------------

// SetNotifier installs the toast surface. The notifier is usually the
// status server, which is constructed after the queue.
func (q *Queue) SetNotifier(n interfaces.INotifier) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifier = n
}

// -----------------------------------------------------------------------------

// Push merges an edit into the pending change-set and (re)arms the debounce
// timer. Later values win per key. Never blocks on I/O.
func (q *Queue) Push(changes map[string]interface{}) {
	if len(changes) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	if q.pending == nil {
		q.pending = make(map[string]interface{}, len(changes))
	}
	for k, v := range changes {
		q.pending[k] = v
	}
	if q.inFlight {
		// The landing flight picks the pending set up itself.
		return
	}

	if q.timer != nil {
		q.timer.Stop()
	}
	q.generation++
	gen := q.generation
	q.timer = time.AfterFunc(q.debounce, func() { q.fire(gen) })
}

// -----------------------------------------------------------------------------

// Flush sends any pending change-set immediately, bypassing the debounce.
// Used on shutdown. A change-set held by an in-flight save cannot be
// flushed and is reported instead.
func (q *Queue) Flush() {
	q.mu.Lock()
	if q.stopped || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	if q.inFlight {
		q.mu.Unlock()
		q.logger.Warning("autosave flush skipped: save already in flight")
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	delta := q.pending
	q.pending = nil
	q.inFlight = true
	q.mu.Unlock()

	q.runSave(delta)
}

// -----------------------------------------------------------------------------

// Stop disables the queue. Pending edits are dropped; call Flush first if
// they should survive.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.generation++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.pending = nil
}

// -----------------------------------------------------------------------------

// Committed returns a copy of the last successfully saved state.
func (q *Queue) Committed() map[string]interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return copyState(q.committed)
}

// -----------------------------------------------------------------------------

// PendingCount returns the number of keys waiting to be saved.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// fire runs on the debounce timer goroutine.
func (q *Queue) fire(gen uint64) {
	q.mu.Lock()
	if q.stopped || gen != q.generation || q.inFlight || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	q.timer = nil
	delta := q.pending
	q.pending = nil
	q.inFlight = true
	q.mu.Unlock()

	q.runSave(delta)
}

// -----------------------------------------------------------------------------

// runSave performs the save and, on success, immediately sends any
// change-set that accumulated during the flight. The caller must have set
// inFlight.
func (q *Queue) runSave(delta map[string]interface{}) {
	for {
		err := q.saver.Save(delta)

		q.mu.Lock()
		if err != nil {
			q.pending = nil
			q.inFlight = false
			snapshot := copyState(q.committed)
			revert := q.OnRevert
			notifier := q.notifier
			q.mu.Unlock()

			q.logger.Error("autosave failed, draft dropped: %v", err)
			if notifier != nil {
				notifier.Notify("error", fmt.Sprintf("autosave failed: %v", err))
			}
			if revert != nil {
				revert(snapshot)
			}
			return
		}

		for k, v := range delta {
			q.committed[k] = v
		}
		snapshot := copyState(q.committed)
		commit := q.OnCommit

		if len(q.pending) > 0 && !q.stopped {
			delta = q.pending
			q.pending = nil
			q.mu.Unlock()

			q.logger.Debug("autosave committed %d keys, follow-up save queued", len(snapshot))
			if commit != nil {
				commit(snapshot)
			}
			continue
		}
		q.inFlight = false
		q.mu.Unlock()

		q.logger.Debug("autosave committed %d keys", len(snapshot))
		if commit != nil {
			commit(snapshot)
		}
		return
	}
}

// -----------------------------------------------------------------------------

func copyState(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
