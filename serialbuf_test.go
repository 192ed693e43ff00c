// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/netbuf"
)

func TestSerialBufferRoundTrip(t *testing.T) {
	b := netbuf.NewSerialBuffer(32)

	if !b.WriteInt8(-7) {
		t.Fatalf("WriteInt8: want success")
	}
	if !b.WriteUint32(0xDEADBEEF) {
		t.Fatalf("WriteUint32: want success")
	}
	if !b.WriteFloat64(3.125) {
		t.Fatalf("WriteFloat64: want success")
	}
	if !b.WriteString("hi") {
		t.Fatalf("WriteString: want success")
	}

	want := []byte{
		0xF9,
		0xEF, 0xBE, 0xAD, 0xDE,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x09, 0x40,
		0x02, 0x00, 0x00, 0x00, 0x68, 0x69,
	}
	if got := b.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("wire bytes: got %X, want %X", got, want)
	}

	i8, ok := b.ReadInt8()
	if !ok || i8 != -7 {
		t.Fatalf("ReadInt8: got (%d, %v), want (-7, true)", i8, ok)
	}
	u32, ok := b.ReadUint32()
	if !ok || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32: got (%#x, %v), want (0xDEADBEEF, true)", u32, ok)
	}
	f64, ok := b.ReadFloat64()
	if !ok || f64 != 3.125 {
		t.Fatalf("ReadFloat64: got (%v, %v), want (3.125, true)", f64, ok)
	}
	s, ok := b.ReadString()
	if !ok || s != "hi" {
		t.Fatalf("ReadString: got (%q, %v), want (\"hi\", true)", s, ok)
	}

	if b.Len() != 0 {
		t.Fatalf("after full round trip: want empty, got Len()=%d", b.Len())
	}
	if b.Failed() {
		t.Fatalf("after full round trip: want fail==false")
	}
}

func TestSerialBufferShortWriteSetsStickyFail(t *testing.T) {
	b := netbuf.NewSerialBuffer(2)

	if b.WriteUint32(1) {
		t.Fatalf("WriteUint32 into 2-byte buffer: want failure")
	}
	if !b.Failed() {
		t.Fatalf("want sticky fail set after short write")
	}
	if b.Len() != 0 {
		t.Fatalf("short write must not partially commit, got Len()=%d", b.Len())
	}

	// Fail stays set until Clear, even across an operation that would
	// otherwise succeed.
	if !b.WriteUint8(1) {
		t.Fatalf("WriteUint8 should still succeed (capacity allows it)")
	}
	if !b.Failed() {
		t.Fatalf("sticky fail must remain set until Clear")
	}

	b.Clear()
	if b.Failed() {
		t.Fatalf("Clear must reset the fail flag")
	}
	if b.Len() != 0 || b.Cap() != 2 {
		t.Fatalf("Clear must reset cursors but not capacity")
	}
}

func TestSerialBufferShortReadDoesNotAdvance(t *testing.T) {
	b := netbuf.NewSerialBuffer(4)
	b.WriteUint16(0xBEEF)

	if _, ok := b.ReadUint32(); ok {
		t.Fatalf("ReadUint32 past available data: want failure")
	}
	if !b.Failed() {
		t.Fatalf("want sticky fail set after short read")
	}

	// The cursor must not have advanced: the 2 bytes are still readable.
	v, ok := b.ReadUint16()
	if !ok || v != 0xBEEF {
		t.Fatalf("ReadUint16 after failed ReadUint32: got (%#x, %v), want (0xBEEF, true)", v, ok)
	}
}

func TestSerialBufferTryResize(t *testing.T) {
	b := netbuf.NewSerialBuffer(8)
	b.WriteUint32(1)
	b.WriteUint32(2)

	if b.TryResize(4) {
		t.Fatalf("TryResize below current unread payload: want failure")
	}
	if b.TryResize(8) {
		t.Fatalf("TryResize to the same capacity: want failure")
	}
	if !b.TryResize(16) {
		t.Fatalf("TryResize growing the buffer: want success")
	}
	if b.Cap() != 16 {
		t.Fatalf("Cap after resize: got %d, want 16", b.Cap())
	}

	v1, _ := b.ReadUint32()
	v2, _ := b.ReadUint32()
	if v1 != 1 || v2 != 2 {
		t.Fatalf("payload not preserved across resize: got (%d, %d), want (1, 2)", v1, v2)
	}
}

func TestSerialBufferCString(t *testing.T) {
	b := netbuf.NewSerialBuffer(32)
	b.WriteCString("hello")

	dst := make([]byte, 6)
	n, ok := b.ReadCString(dst)
	if !ok || n != 5 {
		t.Fatalf("ReadCString: got (%d, %v), want (5, true)", n, ok)
	}
	if string(dst[:n]) != "hello" || dst[n] != 0 {
		t.Fatalf("ReadCString content: got %q with terminator %d", dst[:n], dst[n])
	}
}

func TestSerialBufferUTF16RoundTrip(t *testing.T) {
	b := netbuf.NewSerialBuffer(32)
	units := []uint16{'h', 'i', 0x4E2D}
	if !b.WriteUTF16String(units) {
		t.Fatalf("WriteUTF16String: want success")
	}
	got, ok := b.ReadUTF16String()
	if !ok {
		t.Fatalf("ReadUTF16String: want success")
	}
	if len(got) != len(units) {
		t.Fatalf("ReadUTF16String length: got %d, want %d", len(got), len(units))
	}
	for i := range units {
		if got[i] != units[i] {
			t.Fatalf("ReadUTF16String[%d]: got %#x, want %#x", i, got[i], units[i])
		}
	}
}
