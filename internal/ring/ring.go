// Package ring provides the lock-free single-producer single-consumer queue
// used to hand samples from worker threads to the control loop.
package ring

import "sync/atomic"

// Ring is a bounded SPSC queue over a power-of-two circular array.
//
// Ordering contract: Push writes the slot before the release-publish of the
// head cursor, and Pop loads head with acquire semantics before reading the
// slot, so the consumer never observes a partially written element. Pop
// release-publishes tail only after copying the element out, and Push loads
// tail with acquire semantics before deciding a slot is free, so the producer
// never overwrites a slot still being read. Go's sync/atomic operations are
// sequentially consistent, which subsumes both pairings. Exactly one
// goroutine may call Push and exactly one may call Pop; nothing else about
// the type is safe to share.
type Ring[T any] struct {
	buf  []T
	mask uint64
	head atomic.Uint64 // next write index, advanced only by the producer
	tail atomic.Uint64 // next read index, advanced only by the consumer
}

// New returns a ring holding at least capacity elements, rounded up to the
// next power of two.
func New[T any](capacity int) *Ring[T] {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Ring[T]{
		buf:  make([]T, n),
		mask: uint64(n - 1),
	}
}

// Push stores v and reports whether it was accepted. A full ring drops the
// new element and returns false; stored elements are never overwritten.
func (r *Ring[T]) Push(v T) bool {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t >= uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop removes and returns the oldest element in FIFO order.
func (r *Ring[T]) Pop() (v T, ok bool) {
	t := r.tail.Load()
	h := r.head.Load()
	if t >= h {
		return v, false
	}
	v = r.buf[t&r.mask]
	r.tail.Store(t + 1)
	return v, true
}

// Len reports how many elements are currently queued. Only advisory when
// called concurrently with Push or Pop.
func (r *Ring[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}
