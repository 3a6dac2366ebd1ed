package channel

// -----------------------------------------------------------------------------
// OutboundQueue buffers payloads while the channel is not open. Not
// synchronized on its own: the owning channel serializes all access under
// its lock. Enqueue never fails; this is a dashboard, not a durability
// path, so no back-pressure is applied to producers.
// -----------------------------------------------------------------------------

type OutboundQueue struct {
	pending [][]byte
}

// -----------------------------------------------------------------------------

// Push appends a payload; order of arrival is preserved.
func (q *OutboundQueue) Push(data []byte) {
	q.pending = append(q.pending, data)
}

// -----------------------------------------------------------------------------

// Drain removes and returns all pending payloads in FIFO order.
func (q *OutboundQueue) Drain() [][]byte {
	out := q.pending
	q.pending = nil
	return out
}

// -----------------------------------------------------------------------------

// Requeue puts undelivered payloads back at the front, ahead of anything
// pushed while a drain was in progress.
func (q *OutboundQueue) Requeue(items [][]byte) {
	if len(items) == 0 {
		return
	}
	q.pending = append(items, q.pending...)
}

// -----------------------------------------------------------------------------

// Len returns the number of buffered payloads.
func (q *OutboundQueue) Len() int {
	return len(q.pending)
}
