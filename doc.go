// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package netbuf provides the low-level byte and pool containers used to
// shuttle bytes and fixed-type objects across the seam between network I/O
// threads and application logic: bytes arrive, are framed into a
// [SerialBuffer], queued through a [ByteRing], parsed into objects drawn
// from a [Pool], and handed off between single-threaded pipeline stages
// through a [Ring].
//
// # Containers
//
// Five containers, leaf-first:
//
//	TaggedPointer[T] - 64-bit pointer+tag word, CAS-safe, ABA-resistant
//	SerialBuffer      - linear byte buffer: append/consume typed values
//	Ring[T]           - single-threaded bounded ring of T
//	ByteRing          - lock-free single-producer/single-consumer byte ring
//	Pool[T]           - lock-free, block-growing object pool
//
// They do not reference one another at runtime; they share only a common
// implementation vocabulary (wrap-around indexing, cache-line padding,
// tagged-pointer freelists).
//
// # SerialBuffer: wire encoding
//
//	sb := netbuf.NewSerialBuffer(64)
//	sb.WriteUint32(0xDEADBEEF)
//	sb.WriteString("hi")
//	v, _ := sb.ReadUint32()
//	s, _ := sb.ReadString()
//
// Integers are written little-endian on the wire regardless of host byte
// order; strings are prefixed with a 32-bit unsigned length (no other
// prefix width is offered). A sticky
// fail flag latches on the first short read or write and is only cleared
// by Clear — this lets a caller pipeline many operations and check
// success once at the end.
//
// # ByteRing: producer/consumer handoff
//
//	ring := netbuf.NewByteRing(4096)
//
//	go func() { // producer
//	    backoff := iox.Backoff{}
//	    for ring.TryWrite(frame) != nil {
//	        backoff.Wait() // ErrWouldBlock: ring full, back off and retry
//	    }
//	    backoff.Reset()
//	}()
//
//	go func() { // consumer
//	    backoff := iox.Backoff{}
//	    buf := make([]byte, 4096)
//	    for ring.TryRead(buf) != nil {
//	        backoff.Wait() // ErrWouldBlock: nothing to read yet, back off and retry
//	    }
//	    backoff.Reset()
//	}()
//
// Exactly one producer goroutine may call the Try*Write family and
// exactly one consumer goroutine may call the Try*Read family,
// concurrently. TryResize and Clear are exclusive-access operations and
// must not be called while a producer or consumer is active.
//
// # Pool: recycling parsed objects
//
//	pool := netbuf.NewPool[Message]()
//	msg := pool.Get()
//	...
//	pool.Put(msg)
//
// Pool is safe for any number of concurrent Get/Put callers. Block growth
// (when the freelist is empty) takes an internal mutex; the get/put fast
// paths never block.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/iox] for semantic
// control-flow errors, and [code.hybscloud.com/spin] for CPU pause
// instructions during internal contention.
package netbuf
