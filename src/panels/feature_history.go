package panels

import (
	"sync"

	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// FeatureHistory is a fixed-size circular buffer of feature vectors.
// True ring buffer - no resizing on append!
// -----------------------------------------------------------------------------

type FeatureHistory struct {
	data     []models.MFeatureUpdate
	capacity int
	index    int // Next write position
	size     int // Current number of elements
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

// NewFeatureHistory creates a new buffer with fixed capacity
func NewFeatureHistory(capacity int) *FeatureHistory {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &FeatureHistory{
		data:     make([]models.MFeatureUpdate, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a feature update, overwriting the oldest entry when full.
func (fh *FeatureHistory) Append(update models.MFeatureUpdate) {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fh.data[fh.index] = update
	fh.index = (fh.index + 1) % fh.capacity

	// Update size (never exceeds capacity)
	if fh.size < fh.capacity {
		fh.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent updates, oldest first.
func (fh *FeatureHistory) GetLatest(n int) []models.MFeatureUpdate {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	if fh.size == 0 || n <= 0 {
		return []models.MFeatureUpdate{}
	}

	count := n
	if n > fh.size {
		count = fh.size
	}

	result := make([]models.MFeatureUpdate, count)
	startIdx := (fh.index - count + fh.capacity) % fh.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % fh.capacity
		result[i] = fh.data[idx]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (fh *FeatureHistory) GetAll() []models.MFeatureUpdate {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	if fh.size == 0 {
		return []models.MFeatureUpdate{}
	}

	result := make([]models.MFeatureUpdate, fh.size)

	var startIdx int
	if fh.size == fh.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = fh.index
	} else {
		startIdx = 0
	}

	for i := 0; i < fh.size; i++ {
		idx := (startIdx + i) % fh.capacity
		result[i] = fh.data[idx]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (fh *FeatureHistory) Size() int {
	fh.mu.RLock()
	defer fh.mu.RUnlock()
	return fh.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (fh *FeatureHistory) Capacity() int {
	return fh.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (fh *FeatureHistory) Clear() {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.index = 0
	fh.size = 0
}
