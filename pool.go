// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import (
	"fmt"
	"io"
	"sync"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// DefaultBlockMinSize is the node count of a Pool's first block, and the
// floor applied to every subsequent block's geometrically grown size.
const DefaultBlockMinSize = 16

// poolNode is one slot of a Pool's backing storage. value is the first
// field so that a *T returned from Get can be reinterpreted back into its
// owning *poolNode[T] via unsafe.Pointer, mirroring this library's
// container-of idiom for locating a Node from a caller-held object
// pointer.
type poolNode[T any] struct {
	value       T
	next        uint64 // freelist link: 0 = nil, else (global index + 1)
	idx         uint64 // this node's own global index, fixed at block creation
	constructed bool   // persistent mode only: has value ever been initialized
	owner       uintptr
}

type poolBlock[T any] struct {
	nodes []poolNode[T]
}

// Pool is a block-growing, lock-free freelist of T. Nodes are allocated in
// geometrically growing blocks and never individually freed; the freelist
// head is a tagged (generation, node-index) pair packed into a single
// 128-bit CAS word, defeating ABA the same way a tagged pointer would
// without needing raw address arithmetic into Go's heap.
//
// Pool comes in two modes, chosen at construction: [NewPool] destroys (via
// [Resettable].Reset, standing in for a destructor) the value on every
// return to the pool; [NewPersistentPool] leaves the value in place across
// reuse, so a caller pulling a recycled slot must reset its own state.
type Pool[T any] struct {
	mu         sync.Mutex
	blocks     []*poolBlock[T]
	blockStart []uint64
	total      uint64

	head atomix.Uint128 // lo=tag, hi=(global index + 1), 0 = empty
	_    pad
	used   atomix.Int64
	unused atomix.Int64

	persistent     bool
	integrityCheck bool
	leakSink       io.Writer
	blockMinSize   int
	id             uintptr
}

// PoolOption configures a [Pool] at construction time, standing in for
// this library's build-time configuration knobs (block sizing, the
// integrity check, and the leak diagnostic sink).
type PoolOption func(*poolConfig)

type poolConfig struct {
	integrityCheck bool
	leakSink       io.Writer
	blockMinSize   int
}

// WithBlockMinSize sets the node count of the pool's first block (and the
// floor for every later block). Default [DefaultBlockMinSize].
func WithBlockMinSize(n int) PoolOption {
	return func(c *poolConfig) { c.blockMinSize = n }
}

// WithIntegrityCheck enables or disables the back-pointer verification
// that [Pool.Put] performs before returning a slot to the freelist.
// Enabled by default.
func WithIntegrityCheck(enabled bool) PoolOption {
	return func(c *poolConfig) { c.integrityCheck = enabled }
}

// WithLeakSink sets the diagnostic writer that receives a line when
// [Pool.Close] finds live (unreturned) slots. Disabled (nil) by default.
func WithLeakSink(w io.Writer) PoolOption {
	return func(c *poolConfig) { c.leakSink = w }
}

func newPoolConfig(opts []PoolOption) poolConfig {
	c := poolConfig{integrityCheck: true, blockMinSize: DefaultBlockMinSize}
	for _, opt := range opts {
		opt(&c)
	}
	if c.blockMinSize <= 0 {
		c.blockMinSize = DefaultBlockMinSize
	}
	return c
}

// NewPool returns a destroy-on-return Pool: [Pool.Put] resets the returned
// value (via [Resettable] if implemented) and every [Pool.Get] hands back
// a zeroed T.
func NewPool[T any](opts ...PoolOption) *Pool[T] {
	return newPool[T](false, opts)
}

// NewPersistentPool returns a no-destroy-on-return Pool: values persist
// across reuse, so a [Pool.Get] that draws an already-used slot returns it
// exactly as it was left, without zeroing. Only the first draw of any
// given slot zero-initializes it.
func NewPersistentPool[T any](opts ...PoolOption) *Pool[T] {
	return newPool[T](true, opts)
}

func newPool[T any](persistent bool, opts []PoolOption) *Pool[T] {
	c := newPoolConfig(opts)
	p := &Pool[T]{
		persistent:     persistent,
		integrityCheck: c.integrityCheck,
		leakSink:       c.leakSink,
		blockMinSize:   c.blockMinSize,
	}
	p.id = uintptr(unsafe.Pointer(p))
	return p
}

func (p *Pool[T]) nodeAt(globalIdx uint64) *poolNode[T] {
	// blocks are append-only and few in number; linear scan is fine.
	for i, start := range p.blockStart {
		block := p.blocks[i]
		if globalIdx < start+uint64(len(block.nodes)) {
			return &block.nodes[globalIdx-start]
		}
	}
	panic("netbuf: pool freelist index out of range")
}

// growBlock appends one new block and splices its nodes onto the front of
// the freelist. Serialized by p.mu; this is the only operation in this
// type that may block.
func (p *Pool[T]) growBlock() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lo, hi := p.head.LoadAcquire(); hi != 0 {
		_ = lo
		return // another goroutine already grew the pool
	}

	size := p.total
	if size < uint64(p.blockMinSize) {
		size = uint64(p.blockMinSize)
	}
	block := &poolBlock[T]{nodes: make([]poolNode[T], size)}
	start := p.total
	for i := range block.nodes {
		block.nodes[i].owner = p.id
		idx := start + uint64(i)
		block.nodes[i].idx = idx
		if i == len(block.nodes)-1 {
			block.nodes[i].next = 0 // patched below
		} else {
			block.nodes[i].next = idx + 1 + 1
		}
	}
	p.blocks = append(p.blocks, block)
	p.blockStart = append(p.blockStart, start)
	p.total += size
	p.unused.AddAcqRel(int64(size))

	firstIdx := start
	lastIdx := start + size - 1
	var sw spin.Wait
	for {
		lo, hi := p.head.LoadAcquire()
		p.nodeAt(lastIdx).next = hi
		// tag carries over unchanged: this is a push, and only the pop
		// path in Get bumps the tag (spec.md §4.5).
		if p.head.CompareAndSwapAcqRel(lo, hi, lo, firstIdx+1) {
			return
		}
		sw.Once()
	}
}

// Get draws a slot from the pool, growing it by one block if empty. In
// destroy-on-return mode the returned value is always zeroed; in
// persistent mode a never-before-used slot is zeroed, and a reused slot is
// returned exactly as [Pool.Put] left it.
func (p *Pool[T]) Get() *T {
	var node *poolNode[T]
	var sw spin.Wait
	for {
		lo, hi := p.head.LoadAcquire()
		if hi == 0 {
			p.growBlock()
			continue
		}
		idx := hi - 1
		candidate := p.nodeAt(idx)
		next := candidate.next
		// pop bumps the tag (spec.md §4.5: "bump tag on pop"); pushes in
		// Put and growBlock leave it unchanged.
		if p.head.CompareAndSwapAcqRel(lo, hi, lo+1, next) {
			node = candidate
			break
		}
		sw.Once()
	}
	p.used.AddAcqRel(1)
	p.unused.AddAcqRel(-1)
	if !p.persistent {
		var zero T
		node.value = zero
	} else if !node.constructed {
		var zero T
		node.value = zero
		node.constructed = true
	}
	return &node.value
}

// Put returns obj to the pool. In destroy-on-return mode obj's Reset
// method (if it implements [Resettable]) runs and the slot is zeroed; in
// persistent mode the value is left exactly as-is for the next [Pool.Get].
//
// Panics with [ForeignObjectError] if the integrity check is enabled and
// obj was not allocated from this pool.
func (p *Pool[T]) Put(obj *T) {
	node := (*poolNode[T])(unsafe.Pointer(obj))
	if p.integrityCheck && node.owner != p.id {
		panic(&ForeignObjectError{Pool: p.id})
	}
	if !p.persistent {
		if r, ok := any(obj).(Resettable); ok {
			r.Reset()
		}
		var zero T
		node.value = zero
	}
	p.used.AddAcqRel(-1)
	p.unused.AddAcqRel(1)

	var sw spin.Wait
	for {
		lo, hi := p.head.LoadAcquire()
		node.next = hi
		// tag carries over unchanged on a push; only Get's pop bumps it
		// (spec.md §4.5: "new ← TaggedPtr(&node, old.tag)").
		if p.head.CompareAndSwapAcqRel(lo, hi, lo, node.idx+1) {
			return
		}
		sw.Once()
	}
}

// Used returns the number of slots currently drawn from the pool.
func (p *Pool[T]) Used() int64 { return p.used.LoadAcquire() }

// Unused returns the number of slots currently on the freelist.
func (p *Pool[T]) Unused() int64 { return p.unused.LoadAcquire() }

// Close reports a leak diagnostic to the configured sink if any slots are
// still drawn (Used() > 0). It does not reclaim memory: Pool blocks are
// never individually freed, matching this library's allocate-in-blocks,
// never-free lifecycle.
func (p *Pool[T]) Close() {
	if p.leakSink == nil {
		return
	}
	if used := p.Used(); used > 0 {
		fmt.Fprintf(p.leakSink, "netbuf: pool %#x leaked %d slot(s)\n", p.id, used)
	}
}
