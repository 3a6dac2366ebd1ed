package panels

import (
	"testing"

	"dashboard-sync/src/models"
)

func update(ts int64) models.MFeatureUpdate {
	return models.MFeatureUpdate{Features: []float64{float64(ts)}, Timestamp: ts}
}

func TestFeatureHistoryAppendAndGetAll(t *testing.T) {
	fh := NewFeatureHistory(4)

	for ts := int64(1); ts <= 3; ts++ {
		fh.Append(update(ts))
	}

	if fh.Size() != 3 {
		t.Fatalf("Size = %d, want 3", fh.Size())
	}

	all := fh.GetAll()
	for i, want := range []int64{1, 2, 3} {
		if all[i].Timestamp != want {
			t.Errorf("all[%d].Timestamp = %d, want %d", i, all[i].Timestamp, want)
		}
	}
}

func TestFeatureHistoryWrapsAround(t *testing.T) {
	fh := NewFeatureHistory(3)

	for ts := int64(1); ts <= 5; ts++ {
		fh.Append(update(ts))
	}

	if fh.Size() != 3 {
		t.Fatalf("Size = %d, want capacity 3", fh.Size())
	}

	all := fh.GetAll()
	for i, want := range []int64{3, 4, 5} {
		if all[i].Timestamp != want {
			t.Errorf("all[%d].Timestamp = %d, want %d", i, all[i].Timestamp, want)
		}
	}
}

func TestFeatureHistoryGetLatest(t *testing.T) {
	fh := NewFeatureHistory(10)
	for ts := int64(1); ts <= 6; ts++ {
		fh.Append(update(ts))
	}

	latest := fh.GetLatest(2)
	if len(latest) != 2 || latest[0].Timestamp != 5 || latest[1].Timestamp != 6 {
		t.Errorf("GetLatest(2) = %+v", latest)
	}

	// Asking for more than stored returns everything.
	if got := fh.GetLatest(100); len(got) != 6 {
		t.Errorf("GetLatest(100) returned %d items, want 6", len(got))
	}
	if got := fh.GetLatest(0); len(got) != 0 {
		t.Errorf("GetLatest(0) returned %d items, want 0", len(got))
	}
}

func TestFeatureHistoryClear(t *testing.T) {
	fh := NewFeatureHistory(3)
	fh.Append(update(1))
	fh.Clear()

	if fh.Size() != 0 || len(fh.GetAll()) != 0 {
		t.Error("Clear did not empty the buffer")
	}
	if fh.Capacity() != 3 {
		t.Errorf("Capacity changed after Clear: %d", fh.Capacity())
	}
}
