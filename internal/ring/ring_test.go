package ring

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestPushPop_FIFO verifies elements come out in insertion order.
func TestPushPop_FIFO(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 5; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) rejected on a non-full ring", i)
		}
	}
	for i := 0; i < 5; i++ {
		v, ok := r.Pop()
		if !ok {
			t.Fatalf("Pop %d returned empty", i)
		}
		if v != i {
			t.Errorf("Pop %d = %d, want %d", i, v, i)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Error("Pop on drained ring returned a value")
	}
}

// TestPush_DropsNewestWhenFull verifies a full ring rejects the new element
// and keeps everything already stored.
func TestPush_DropsNewestWhenFull(t *testing.T) {
	r := New[int](4)
	n := r.Cap()
	for i := 0; i < n; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) rejected before the ring was full", i)
		}
	}
	if r.Push(999) {
		t.Fatal("Push accepted on a full ring")
	}
	if r.Len() != n {
		t.Fatalf("Len = %d after rejected push, want %d", r.Len(), n)
	}
	for i := 0; i < n; i++ {
		v, ok := r.Pop()
		if !ok || v != i {
			t.Fatalf("Pop %d = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

// TestNew_RoundsUpCapacity verifies the power-of-two rounding.
func TestNew_RoundsUpCapacity(t *testing.T) {
	cases := []struct{ req, want int }{
		{1, 1}, {2, 2}, {3, 4}, {5, 8}, {8, 8}, {1000, 1024},
	}
	for _, c := range cases {
		if got := New[byte](c.req).Cap(); got != c.want {
			t.Errorf("New(%d).Cap() = %d, want %d", c.req, got, c.want)
		}
	}
}

// TestConcurrent_SingleProducerSingleConsumer streams values through a small
// ring and verifies the consumer sees a strictly increasing sequence with no
// duplicates, only gaps from dropped elements.
func TestConcurrent_SingleProducerSingleConsumer(t *testing.T) {
	const total = 100000
	r := New[uint64](64)

	var producerDone atomic.Bool
	var pushed atomic.Uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		n := uint64(0)
		for i := uint64(0); i < total; i++ {
			if r.Push(i) {
				n++
			}
		}
		pushed.Store(n)
		producerDone.Store(true)
	}()

	var got []uint64
	for {
		v, ok := r.Pop()
		if ok {
			got = append(got, v)
			continue
		}
		if producerDone.Load() {
			break
		}
	}
	wg.Wait()
	for v, ok := r.Pop(); ok; v, ok = r.Pop() {
		got = append(got, v)
	}

	if uint64(len(got)) != pushed.Load() {
		t.Fatalf("consumed %d values, producer pushed %d", len(got), pushed.Load())
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("out of order at %d: %d after %d", i, got[i], got[i-1])
		}
	}
	t.Logf("streamed %d/%d values through a %d-slot ring", pushed.Load(), total, r.Cap())
}
