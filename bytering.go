// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import "code.hybscloud.com/atomix"

// ByteRing is a lock-free byte ring with exactly one producer and one
// consumer. The producer exclusively mutates the write cursor; the
// consumer exclusively mutates the read cursor. Cross-thread visibility
// uses release on the cursor each side owns and acquire on the cursor it
// observes, matching the teacher repo's SPSC queue convention.
//
// The underlying region holds effectiveCapacity+1 bytes so the cursors can
// disambiguate full from empty without a separate counter. r and w are
// padded onto distinct cache lines to prevent false sharing between the
// producer and consumer.
type ByteRing struct {
	buf []byte
	cap int // effective capacity; len(buf) == cap+1

	_ pad
	w atomix.Uint64
	_ pad
	r atomix.Uint64
	_ pad
}

// NewByteRing returns a ByteRing with the given effective capacity.
func NewByteRing(effectiveCapacity int) *ByteRing {
	return &ByteRing{
		buf: make([]byte, effectiveCapacity+1),
		cap: effectiveCapacity,
	}
}

func (b *ByteRing) consecutiveLen(pos, available int) int {
	n := len(b.buf) - pos
	if n > available {
		return available
	}
	return n
}

// AvailableRead returns the number of unread bytes, observed with acquire
// on w (the cursor the consumer does not own).
func (b *ByteRing) AvailableRead() int {
	w := b.w.LoadAcquire()
	r := b.r.LoadRelaxed()
	return int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
}

// AvailableWrite returns the number of free bytes, observed with acquire
// on r (the cursor the producer does not own).
func (b *ByteRing) AvailableWrite() int {
	r := b.r.LoadAcquire()
	w := b.w.LoadRelaxed()
	used := int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
	return b.cap - used
}

// MonitorAvailableRead is a snapshot for observers outside the
// producer/consumer pair. It is not a synchronization point and must not
// be used to gate a subsequent read.
func (b *ByteRing) MonitorAvailableRead() int {
	w := b.w.LoadAcquire()
	r := b.r.LoadAcquire()
	return int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
}

// MonitorAvailableWrite is a snapshot for observers outside the
// producer/consumer pair. It is not a synchronization point and must not
// be used to gate a subsequent write.
func (b *ByteRing) MonitorAvailableWrite() int {
	w := b.w.LoadAcquire()
	r := b.r.LoadAcquire()
	used := int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
	return b.cap - used
}

// TryWrite copies src into the ring. Returns [ErrWouldBlock] without
// copying anything if fewer than len(src) bytes are free. Producer-only.
func (b *ByteRing) TryWrite(src []byte) error {
	r := b.r.LoadAcquire()
	w := b.w.LoadRelaxed()
	used := int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
	if len(src) > b.cap-used {
		return ErrWouldBlock
	}
	pos := int(w % uint64(len(b.buf)))
	first := b.consecutiveLen(pos, len(src))
	copy(b.buf[pos:], src[:first])
	if first < len(src) {
		copy(b.buf, src[first:])
	}
	b.w.StoreRelease((w + uint64(len(src))) % uint64(len(b.buf)))
	return nil
}

// TryRead copies len(dst) bytes out of the ring into dst and advances the
// read cursor. Returns [ErrWouldBlock] without copying anything if fewer
// bytes are available. Consumer-only.
func (b *ByteRing) TryRead(dst []byte) error {
	w := b.w.LoadAcquire()
	r := b.r.LoadRelaxed()
	available := int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
	if len(dst) > available {
		return ErrWouldBlock
	}
	pos := int(r % uint64(len(b.buf)))
	first := b.consecutiveLen(pos, len(dst))
	copy(dst[:first], b.buf[pos:])
	if first < len(dst) {
		copy(dst[first:], b.buf)
	}
	b.r.StoreRelease((r + uint64(len(dst))) % uint64(len(b.buf)))
	return nil
}

// TryPeek copies len(dst) bytes out of the ring into dst without advancing
// the read cursor. Returns [ErrWouldBlock] if fewer bytes are available.
// Consumer-only.
func (b *ByteRing) TryPeek(dst []byte) error {
	w := b.w.LoadAcquire()
	r := b.r.LoadRelaxed()
	available := int((w - r + uint64(len(b.buf))) % uint64(len(b.buf)))
	if len(dst) > available {
		return ErrWouldBlock
	}
	pos := int(r % uint64(len(b.buf)))
	first := b.consecutiveLen(pos, len(dst))
	copy(dst[:first], b.buf[pos:])
	if first < len(dst) {
		copy(dst[first:], b.buf)
	}
	return nil
}

// TryResize reallocates the ring to a new effective capacity, compacting
// readable bytes to offset 0. Not concurrency-safe: callers must ensure
// quiescence (no concurrent producer/consumer). Fails if newEffCap is
// smaller than the currently available-read bytes, or equal to the
// current effective capacity.
func (b *ByteRing) TryResize(newEffCap int) bool {
	used := b.AvailableRead()
	if newEffCap < used || newEffCap == b.cap {
		return false
	}
	next := make([]byte, newEffCap+1)
	r := int(b.r.LoadRelaxed() % uint64(len(b.buf)))
	first := b.consecutiveLen(r, used)
	n := copy(next, b.buf[r:r+first])
	if first < used {
		n += copy(next[n:], b.buf[:used-first])
	}
	b.buf = next
	b.cap = newEffCap
	b.r.StoreRelaxed(0)
	b.w.StoreRelaxed(uint64(n))
	return true
}

// Clear resets both cursors to 0, discarding any unread payload. Not
// concurrency-safe: callers must ensure quiescence.
func (b *ByteRing) Clear() {
	b.r.StoreRelaxed(0)
	b.w.StoreRelaxed(0)
}
