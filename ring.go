// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

// Resettable is implemented by element types that need to release
// references or restore zero state when evicted from a [Ring], standing
// in for this library's equivalent of a destructor call: Go has no
// placement-construct/destruct, so a popped slot's teardown is expressed
// as an optional Reset method, the same contract hayabusa-cloud-iobuf's
// pool items satisfy.
type Resettable interface {
	Reset()
}

// Ring is a single-threaded bounded FIFO of T. Internal capacity is
// capacity+1 slots, so one slot is always empty to disambiguate full from
// empty using only two indices. Ring is not safe for concurrent use; for a
// concurrent single-producer/single-consumer byte queue use [ByteRing].
type Ring[T any] struct {
	buf  []T
	r, w int
}

// NewRing returns an empty Ring with room for capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{buf: make([]T, capacity+1)}
}

// Cap returns the number of elements the ring can hold.
func (q *Ring[T]) Cap() int {
	if len(q.buf) == 0 {
		return 0
	}
	return len(q.buf) - 1
}

// Len returns the number of elements currently queued.
func (q *Ring[T]) Len() int {
	if len(q.buf) == 0 {
		return 0
	}
	return ((q.w - q.r) + len(q.buf)) % len(q.buf)
}

// Empty reports whether the ring holds no elements.
func (q *Ring[T]) Empty() bool { return q.Len() == 0 }

// Full reports whether the ring is at capacity.
func (q *Ring[T]) Full() bool { return q.Len() == q.Cap() }

func (q *Ring[T]) advance(i int) int {
	i++
	if i == len(q.buf) {
		return 0
	}
	return i
}

// TryPush appends value at the write index. Returns false without
// modifying the ring if it is full.
func (q *Ring[T]) TryPush(value T) bool {
	if q.Full() {
		return false
	}
	q.buf[q.w] = value
	q.w = q.advance(q.w)
	return true
}

// Front returns the element at the read index. Unchecked: callers must
// ensure the ring is non-empty.
func (q *Ring[T]) Front() T {
	return q.buf[q.r]
}

// Back returns the element most recently pushed. Unchecked: callers must
// ensure the ring is non-empty.
func (q *Ring[T]) Back() T {
	i := q.w - 1
	if i < 0 {
		i = len(q.buf) - 1
	}
	return q.buf[i]
}

// Pop removes the element at the read index, calling its Reset method if
// it implements [Resettable], then zeroing the slot so the garbage
// collector can reclaim anything it referenced. Undefined if the ring is
// empty.
func (q *Ring[T]) Pop() {
	if r, ok := any(&q.buf[q.r]).(Resettable); ok {
		r.Reset()
	}
	var zero T
	q.buf[q.r] = zero
	q.r = q.advance(q.r)
}

// TryResizeBuffer grows the ring's capacity to newCap. Fails only if
// newCap is smaller than the number of elements currently queued;
// succeeds as a no-op (grow-only semantics) when newCap <= the current
// capacity.
func (q *Ring[T]) TryResizeBuffer(newCap int) bool {
	if newCap < q.Len() {
		return false
	}
	if newCap <= q.Cap() {
		return true
	}
	q.relayout(newCap)
	return true
}

// ShrinkToFit reallocates the ring to exactly its current size, if it is
// not already full. Element order is preserved.
func (q *Ring[T]) ShrinkToFit() {
	n := q.Len()
	if n == q.Cap() {
		return
	}
	q.relayout(n)
}

func (q *Ring[T]) relayout(newCap int) {
	n := q.Len()
	next := make([]T, newCap+1)
	for i := 0; i < n; i++ {
		next[i] = q.buf[(q.r+i)%len(q.buf)]
	}
	q.buf = next
	q.r, q.w = 0, n
}

// Swap exchanges the entire state (buffer, indices, capacity) of q and
// other.
func (q *Ring[T]) Swap(other *Ring[T]) {
	q.buf, other.buf = other.buf, q.buf
	q.r, other.r = other.r, q.r
	q.w, other.w = other.w, q.w
}
