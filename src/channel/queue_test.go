package channel

import "testing"

func TestQueuePushDrainOrder(t *testing.T) {
	var q OutboundQueue

	q.Push([]byte("a"))
	q.Push([]byte("b"))
	q.Push([]byte("c"))

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}

	items := q.Drain()
	if len(items) != 3 {
		t.Fatalf("Drain returned %d items, want 3", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(items[i]) != want {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", q.Len())
	}
}

func TestQueueRequeueGoesFirst(t *testing.T) {
	var q OutboundQueue

	q.Push([]byte("late"))
	q.Requeue([][]byte{[]byte("first"), []byte("second")})

	items := q.Drain()
	want := []string{"first", "second", "late"}
	if len(items) != len(want) {
		t.Fatalf("Drain returned %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if string(items[i]) != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestQueueRequeueEmptyIsNoop(t *testing.T) {
	var q OutboundQueue
	q.Push([]byte("x"))
	q.Requeue(nil)
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
}
