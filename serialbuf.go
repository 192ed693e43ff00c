// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import (
	"encoding/binary"
	"math"
)

// DefaultLengthPrefixWidth is the width, in bytes, of the length prefix
// written ahead of every string payload. All string methods use this
// fixed 32-bit unsigned prefix; no other prefix width is offered.
const DefaultLengthPrefixWidth = 4

// SerialBuffer is a contiguous byte region used write-then-read, never
// interleaved: callers append values with the Write* methods, then consume
// them in the same order with the Read*/Peek* methods. There is no
// wrap-around; once the write cursor reaches capacity the buffer is full.
// For back-and-forth producer/consumer use, use [ByteRing] instead.
//
// All arithmetic values are encoded little-endian on the wire regardless of
// host byte order. A short read or write sets a sticky fail flag, cleared
// only by [SerialBuffer.Clear]. The zero value is a zero-capacity buffer.
type SerialBuffer struct {
	buf  []byte
	r, w int
	fail bool
}

// NewSerialBuffer returns a SerialBuffer with the given capacity.
func NewSerialBuffer(capacity int) *SerialBuffer {
	return &SerialBuffer{buf: make([]byte, capacity)}
}

// Len returns the number of unread payload bytes, w - r.
func (b *SerialBuffer) Len() int { return b.w - b.r }

// Cap returns the total capacity of the underlying region.
func (b *SerialBuffer) Cap() int { return len(b.buf) }

// Failed reports whether the sticky fail flag is set.
func (b *SerialBuffer) Failed() bool { return b.fail }

// Clear resets the read and write cursors to 0 and clears the fail flag.
func (b *SerialBuffer) Clear() {
	b.r, b.w, b.fail = 0, 0, false
}

// Bytes returns the unread payload, buf[r:w]. The slice aliases the
// buffer's storage and is invalidated by the next mutating call.
func (b *SerialBuffer) Bytes() []byte {
	return b.buf[b.r:b.w]
}

// WriteBytes appends src verbatim. Sets the fail flag and returns false if
// there is not enough free space; no partial write is committed.
func (b *SerialBuffer) WriteBytes(src []byte) bool {
	if len(src) > len(b.buf)-b.w {
		b.fail = true
		return false
	}
	copy(b.buf[b.w:], src)
	b.w += len(src)
	return true
}

// ReadBytes copies len(dst) bytes of unread payload into dst and advances
// the read cursor. Sets the fail flag and returns false, without advancing,
// if fewer bytes are available.
func (b *SerialBuffer) ReadBytes(dst []byte) bool {
	if len(dst) > b.w-b.r {
		b.fail = true
		return false
	}
	copy(dst, b.buf[b.r:b.r+len(dst)])
	b.r += len(dst)
	return true
}

// PeekBytes copies len(dst) bytes of unread payload into dst without
// advancing the read cursor. Sets the fail flag and returns false if fewer
// bytes are available.
func (b *SerialBuffer) PeekBytes(dst []byte) bool {
	if len(dst) > b.w-b.r {
		b.fail = true
		return false
	}
	copy(dst, b.buf[b.r:b.r+len(dst)])
	return true
}

// TryResize reallocates the buffer to new_cap, compacting unread payload to
// offset 0. Fails if new_cap is smaller than the currently unread payload
// or equal to the current capacity.
func (b *SerialBuffer) TryResize(newCap int) bool {
	if newCap < b.w-b.r || newCap == len(b.buf) {
		return false
	}
	next := make([]byte, newCap)
	n := copy(next, b.buf[b.r:b.w])
	b.buf = next
	b.r, b.w = 0, n
	return true
}

func (b *SerialBuffer) writeUint(v uint64, size int) bool {
	if size > len(b.buf)-b.w {
		b.fail = true
		return false
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	copy(b.buf[b.w:], tmp[:size])
	b.w += size
	return true
}

func (b *SerialBuffer) readUint(size int) (uint64, bool) {
	if size > b.w-b.r {
		b.fail = true
		return 0, false
	}
	var tmp [8]byte
	copy(tmp[:], b.buf[b.r:b.r+size])
	b.r += size
	return binary.LittleEndian.Uint64(tmp[:]), true
}

// WriteUint8 writes a single byte.
func (b *SerialBuffer) WriteUint8(v uint8) bool { return b.writeUint(uint64(v), 1) }

// ReadUint8 reads a single byte.
func (b *SerialBuffer) ReadUint8() (uint8, bool) {
	v, ok := b.readUint(1)
	return uint8(v), ok
}

// WriteUint16 writes v little-endian.
func (b *SerialBuffer) WriteUint16(v uint16) bool { return b.writeUint(uint64(v), 2) }

// ReadUint16 reads a little-endian uint16.
func (b *SerialBuffer) ReadUint16() (uint16, bool) {
	v, ok := b.readUint(2)
	return uint16(v), ok
}

// WriteUint32 writes v little-endian.
func (b *SerialBuffer) WriteUint32(v uint32) bool { return b.writeUint(uint64(v), 4) }

// ReadUint32 reads a little-endian uint32.
func (b *SerialBuffer) ReadUint32() (uint32, bool) {
	v, ok := b.readUint(4)
	return uint32(v), ok
}

// WriteUint64 writes v little-endian.
func (b *SerialBuffer) WriteUint64(v uint64) bool { return b.writeUint(v, 8) }

// ReadUint64 reads a little-endian uint64.
func (b *SerialBuffer) ReadUint64() (uint64, bool) {
	return b.readUint(8)
}

// WriteInt8 writes v as a single byte.
func (b *SerialBuffer) WriteInt8(v int8) bool { return b.WriteUint8(uint8(v)) }

// ReadInt8 reads a single byte as int8.
func (b *SerialBuffer) ReadInt8() (int8, bool) {
	v, ok := b.ReadUint8()
	return int8(v), ok
}

// WriteInt16 writes v little-endian.
func (b *SerialBuffer) WriteInt16(v int16) bool { return b.WriteUint16(uint16(v)) }

// ReadInt16 reads a little-endian int16.
func (b *SerialBuffer) ReadInt16() (int16, bool) {
	v, ok := b.ReadUint16()
	return int16(v), ok
}

// WriteInt32 writes v little-endian.
func (b *SerialBuffer) WriteInt32(v int32) bool { return b.WriteUint32(uint32(v)) }

// ReadInt32 reads a little-endian int32.
func (b *SerialBuffer) ReadInt32() (int32, bool) {
	v, ok := b.ReadUint32()
	return int32(v), ok
}

// WriteInt64 writes v little-endian.
func (b *SerialBuffer) WriteInt64(v int64) bool { return b.WriteUint64(uint64(v)) }

// ReadInt64 reads a little-endian int64.
func (b *SerialBuffer) ReadInt64() (int64, bool) {
	v, ok := b.ReadUint64()
	return int64(v), ok
}

// WriteFloat32 writes v little-endian, IEEE-754 bit-exact.
func (b *SerialBuffer) WriteFloat32(v float32) bool {
	return b.WriteUint32(math.Float32bits(v))
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (b *SerialBuffer) ReadFloat32() (float32, bool) {
	v, ok := b.ReadUint32()
	return math.Float32frombits(v), ok
}

// WriteFloat64 writes v little-endian, IEEE-754 bit-exact.
func (b *SerialBuffer) WriteFloat64(v float64) bool {
	return b.WriteUint64(math.Float64bits(v))
}

// ReadFloat64 reads a little-endian IEEE-754 float64.
func (b *SerialBuffer) ReadFloat64() (float64, bool) {
	v, ok := b.ReadUint64()
	return math.Float64frombits(v), ok
}

// WriteString writes s as a 4-byte little-endian length prefix (number of
// bytes) followed by the raw bytes of s. s is treated as a byte-sized
// code-unit string (UTF-8); no per-unit swap is performed.
func (b *SerialBuffer) WriteString(s string) bool {
	return b.writeLengthPrefixed([]byte(s), 1)
}

// ReadString reads a length-prefixed byte string written by WriteString.
// Sets the fail flag and leaves the read cursor unmoved if the declared
// payload is not fully present.
func (b *SerialBuffer) ReadString() (string, bool) {
	payload, ok := b.readLengthPrefixed(1)
	if !ok {
		return "", false
	}
	return string(payload), true
}

// WriteUTF16String writes s as a 4-byte little-endian length prefix (number
// of UTF-16 code units) followed by the code units, each little-endian.
func (b *SerialBuffer) WriteUTF16String(units []uint16) bool {
	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	return b.writeLengthPrefixed(raw, 2)
}

// ReadUTF16String reads a length-prefixed UTF-16 code unit string written
// by WriteUTF16String.
func (b *SerialBuffer) ReadUTF16String() ([]uint16, bool) {
	payload, ok := b.readLengthPrefixed(2)
	if !ok {
		return nil, false
	}
	units := make([]uint16, len(payload)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(payload[i*2:])
	}
	return units, true
}

// WriteUTF32String writes s as a 4-byte little-endian length prefix (number
// of UTF-32 code units) followed by the code units, each little-endian.
func (b *SerialBuffer) WriteUTF32String(units []uint32) bool {
	raw := make([]byte, len(units)*4)
	for i, u := range units {
		binary.LittleEndian.PutUint32(raw[i*4:], u)
	}
	return b.writeLengthPrefixed(raw, 4)
}

// ReadUTF32String reads a length-prefixed UTF-32 code unit string written
// by WriteUTF32String.
func (b *SerialBuffer) ReadUTF32String() ([]uint32, bool) {
	payload, ok := b.readLengthPrefixed(4)
	if !ok {
		return nil, false
	}
	units := make([]uint32, len(payload)/4)
	for i := range units {
		units[i] = binary.LittleEndian.Uint32(payload[i*4:])
	}
	return units, true
}

func (b *SerialBuffer) writeLengthPrefixed(raw []byte, unitSize int) bool {
	n := len(raw) / unitSize
	save := b.w
	if !b.WriteUint32(uint32(n)) {
		return false
	}
	if !b.WriteBytes(raw) {
		b.w = save
		b.fail = true
		return false
	}
	return true
}

func (b *SerialBuffer) readLengthPrefixed(unitSize int) ([]byte, bool) {
	if 4 > b.w-b.r {
		b.fail = true
		return nil, false
	}
	n := binary.LittleEndian.Uint32(b.buf[b.r : b.r+4])
	need := int(n) * unitSize
	if need > b.w-b.r-4 {
		b.fail = true
		return nil, false
	}
	b.r += 4
	payload := make([]byte, need)
	copy(payload, b.buf[b.r:b.r+need])
	b.r += need
	return payload, true
}

// WriteCString writes s (a NUL-terminated byte sequence's logical content,
// excluding the terminator) in the same on-wire format as WriteString.
func (b *SerialBuffer) WriteCString(s string) bool {
	return b.WriteString(s)
}

// ReadCString reads a length-prefixed string written by WriteCString (or
// WriteString) into dst, appending a zero terminator. The caller must
// provide a destination at least len(payload)+1 bytes long; ok is false
// (and the fail flag is set) if dst is too small or the payload is
// incomplete.
func (b *SerialBuffer) ReadCString(dst []byte) (n int, ok bool) {
	if 4 > b.w-b.r {
		b.fail = true
		return 0, false
	}
	declared := binary.LittleEndian.Uint32(b.buf[b.r : b.r+4])
	need := int(declared)
	if need > b.w-b.r-4 {
		b.fail = true
		return 0, false
	}
	if len(dst) < need+1 {
		b.fail = true
		return 0, false
	}
	b.r += 4
	copy(dst, b.buf[b.r:b.r+need])
	dst[need] = 0
	b.r += need
	return need, true
}
