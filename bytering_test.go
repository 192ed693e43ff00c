// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/netbuf"
)

func TestByteRingWrapAround(t *testing.T) {
	r := netbuf.NewByteRing(8)

	if err := r.TryWrite([]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("TryWrite [1..8]: %v", err)
	}

	out := make([]byte, 12)
	if err := r.TryRead(out[:4]); err != nil {
		t.Fatalf("TryRead first 4: %v", err)
	}

	if err := r.TryWrite([]byte{9, 10, 11, 12}); err != nil {
		t.Fatalf("TryWrite [9..12]: %v", err)
	}

	if err := r.TryRead(out[4:12]); err != nil {
		t.Fatalf("TryRead remaining 8: %v", err)
	}

	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if !bytes.Equal(out, want) {
		t.Fatalf("wrap-around output: got %v, want %v", out, want)
	}
}

func TestByteRingFullAndEmptyReturnErrWouldBlock(t *testing.T) {
	r := netbuf.NewByteRing(4)

	if err := r.TryWrite([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("fill ring: %v", err)
	}
	if err := r.TryWrite([]byte{5}); !errors.Is(err, netbuf.ErrWouldBlock) {
		t.Fatalf("write to full ring: got %v, want ErrWouldBlock", err)
	}
	if r.AvailableWrite() != 0 {
		t.Fatalf("AvailableWrite on full ring: got %d, want 0", r.AvailableWrite())
	}

	out := make([]byte, 4)
	if err := r.TryRead(out); err != nil {
		t.Fatalf("drain ring: %v", err)
	}
	if err := r.TryRead(out[:1]); !errors.Is(err, netbuf.ErrWouldBlock) {
		t.Fatalf("read from empty ring: got %v, want ErrWouldBlock", err)
	}
	if r.AvailableRead() != 0 {
		t.Fatalf("AvailableRead on empty ring: got %d, want 0", r.AvailableRead())
	}
}

func TestByteRingPeekDoesNotAdvance(t *testing.T) {
	r := netbuf.NewByteRing(4)
	r.TryWrite([]byte{1, 2, 3})

	peeked := make([]byte, 3)
	if err := r.TryPeek(peeked); err != nil {
		t.Fatalf("TryPeek: %v", err)
	}
	if !bytes.Equal(peeked, []byte{1, 2, 3}) {
		t.Fatalf("TryPeek content: got %v, want [1 2 3]", peeked)
	}
	if r.AvailableRead() != 3 {
		t.Fatalf("AvailableRead after Peek: got %d, want 3 (unchanged)", r.AvailableRead())
	}
}

func TestByteRingTryResizePreservesContent(t *testing.T) {
	r := netbuf.NewByteRing(4)
	r.TryWrite([]byte{1, 2, 3})

	if r.TryResize(4) {
		t.Fatalf("TryResize to same effective capacity: want failure")
	}
	if r.TryResize(2) {
		t.Fatalf("TryResize below available-read bytes: want failure")
	}
	if !r.TryResize(8) {
		t.Fatalf("TryResize growing the ring: want success")
	}

	out := make([]byte, 3)
	if err := r.TryRead(out); err != nil {
		t.Fatalf("TryRead after resize: %v", err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Fatalf("content after resize: got %v, want [1 2 3]", out)
	}
}

func TestByteRingConcurrentProducerConsumer(t *testing.T) {
	if netbuf.RaceEnabled {
		t.Skip("race detector cannot observe atomix's explicit memory ordering")
	}

	const total = 1 << 16
	r := netbuf.NewByteRing(256)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			chunk := byte(i)
			for r.TryWrite([]byte{chunk}) != nil {
			}
			i++
		}
	}()

	received := make([]byte, 0, total)
	go func() {
		defer wg.Done()
		buf := make([]byte, 1)
		for len(received) < total {
			if r.TryRead(buf) == nil {
				received = append(received, buf[0])
			}
		}
	}()

	wg.Wait()

	for i, b := range received {
		if b != byte(i) {
			t.Fatalf("byte %d: got %d, want %d", i, b, byte(i))
		}
	}
}
