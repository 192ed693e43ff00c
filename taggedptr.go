// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// DefaultVirtualAddressBits is the tag-packing address width used when a
// [TaggedPointer] is constructed without an explicit width. 48 is the
// usable address width Go's runtime hands out on every supported 64-bit
// target (amd64, arm64, riscv64), not the architecture's theoretical
// maximum, so it holds for any heap pointer the allocator returns.
const DefaultVirtualAddressBits = 48

// TaggedPointer is a single 64-bit atomic word packing a pointer to a
// T-aligned object and an integer tag spread across the high bits (above
// the virtual address width) and the low bits (below alignof(T)). The tag
// exists solely to defeat the ABA problem on a CAS'd freelist; it carries
// no ordering guarantee of its own.
//
// The packed pointer is never the sole GC root of its pointee: callers
// that CAS a *T into a TaggedPointer must keep that *T reachable through
// some other owned structure (as [Pool] does via its block slices), since
// a TaggedPointer's bits are opaque to the garbage collector.
//
// The zero value is a valid null TaggedPointer using DefaultVirtualAddressBits.
type TaggedPointer[T any] struct {
	word  atomix.Uint64
	vBits uint8
}

// NewTaggedPointer returns a TaggedPointer holding ptr with tag 0, using
// DefaultVirtualAddressBits. Panics with [PointerMisalignedError] if ptr's
// address intersects the tag mask.
func NewTaggedPointer[T any](ptr *T) *TaggedPointer[T] {
	return NewTaggedPointerBits[T](ptr, DefaultVirtualAddressBits)
}

// NewTaggedPointerBits returns a TaggedPointer holding ptr with tag 0,
// using an explicit virtual address width (8 <= vBits <= 64). Panics with
// [PointerMisalignedError] if ptr's address intersects the tag mask, or if
// vBits is out of range or too narrow for alignof(T).
func NewTaggedPointerBits[T any](ptr *T, vBits int) *TaggedPointer[T] {
	if vBits < 8 || vBits > 64 {
		panic("netbuf: virtual address bits out of range [8, 64]")
	}
	tp := &TaggedPointer[T]{vBits: uint8(vBits)}
	tp.construct(ptr, 0)
	return tp
}

func (tp *TaggedPointer[T]) vBitsOrDefault() int {
	if tp.vBits == 0 {
		return DefaultVirtualAddressBits
	}
	return int(tp.vBits)
}

// lowBits is the number of tag bits available below alignof(T).
func (tp *TaggedPointer[T]) lowBits() uint {
	var zero T
	align := unsafe.Alignof(zero)
	n := uint(0)
	for align > 1 {
		align >>= 1
		n++
	}
	return n
}

func (tp *TaggedPointer[T]) masks() (low, high, combined uintptr) {
	v := tp.vBitsOrDefault()
	lowN := tp.lowBits()
	low = uintptr(1)<<lowN - 1
	if v >= 64 {
		high = 0
	} else {
		high = ^uintptr(0) << uint(v)
	}
	combined = low | high
	return
}

func (tp *TaggedPointer[T]) tagWidth() uint {
	v := tp.vBitsOrDefault()
	return tp.lowBits() + uint(64-v)
}

// Construct stores ptr into tp with tag 0. Panics with [PointerMisalignedError]
// if ptr's address intersects the tag mask.
func (tp *TaggedPointer[T]) Construct(ptr *T) {
	tp.construct(ptr, 0)
}

// ConstructTag stores ptr into tp with the given tag (truncated to the tag
// width). Panics with [PointerMisalignedError] if ptr's address intersects
// the tag mask.
func (tp *TaggedPointer[T]) ConstructTag(ptr *T, tag uint64) {
	tp.construct(ptr, tag)
}

func (tp *TaggedPointer[T]) construct(ptr *T, tag uint64) {
	low, _, combined := tp.masks()
	addr := uintptr(unsafe.Pointer(ptr))
	if addr&combined != 0 {
		panic(&PointerMisalignedError{Addr: addr, Mask: combined})
	}
	_ = low
	word := tp.pack(addr, tag)
	tp.word.StoreRelease(word)
}

func (tp *TaggedPointer[T]) pack(addr uintptr, tag uint64) uint64 {
	v := tp.vBitsOrDefault()
	lowN := tp.lowBits()
	width := tp.tagWidth()
	if width < 64 {
		tag &= (uint64(1) << width) - 1
	}
	lowTag := uintptr(tag) & (uintptr(1)<<lowN - 1)
	highTag := uintptr(tag >> lowN)
	return uint64(addr) | uint64(lowTag) | uint64(highTag<<uint(v))
}

func (tp *TaggedPointer[T]) unpack(word uint64) (ptr *T, tag uint64) {
	low, _, combined := tp.masks()
	v := tp.vBitsOrDefault()
	lowN := tp.lowBits()
	addr := uintptr(word) &^ combined
	lowTag := uintptr(word) & low
	highTag := uintptr(word) >> uint(v)
	tag = uint64(lowTag) | uint64(highTag)<<lowN
	if addr == 0 {
		return nil, tag
	}
	return (*T)(unsafe.Pointer(addr)), tag
}

// Ptr returns the currently packed pointer, or nil if none is set.
func (tp *TaggedPointer[T]) Ptr() *T {
	ptr, _ := tp.unpack(tp.word.LoadAcquire())
	return ptr
}

// Tag returns the currently packed tag.
func (tp *TaggedPointer[T]) Tag() uint64 {
	_, tag := tp.unpack(tp.word.LoadAcquire())
	return tag
}

// Load atomically returns both the pointer and tag as of a single snapshot.
func (tp *TaggedPointer[T]) Load() (ptr *T, tag uint64) {
	return tp.unpack(tp.word.LoadAcquire())
}

// SetTag replaces the tag, masking v into the tag bits and silently
// truncating bits beyond the tag width. The pointer is unchanged.
func (tp *TaggedPointer[T]) SetTag(v uint64) {
	for {
		old := tp.word.LoadAcquire()
		ptr, _ := tp.unpack(old)
		addr := uintptr(unsafe.Pointer(ptr))
		next := tp.pack(addr, v)
		if tp.word.CompareAndSwapAcqRel(old, next) {
			return
		}
	}
}

// IncreaseTag increments the tag, wrapping at the tag width. Used to defeat
// ABA when a slot is recycled onto a freelist.
func (tp *TaggedPointer[T]) IncreaseTag() {
	for {
		old := tp.word.LoadAcquire()
		ptr, tag := tp.unpack(old)
		addr := uintptr(unsafe.Pointer(ptr))
		next := tp.pack(addr, tag+1)
		if tp.word.CompareAndSwapAcqRel(old, next) {
			return
		}
	}
}

// CompareAndSwap atomically replaces (oldPtr, oldTag) with (newPtr, newTag)
// if the current word still matches the old pair. Panics with
// [PointerMisalignedError] if newPtr's address intersects the tag mask.
func (tp *TaggedPointer[T]) CompareAndSwap(oldPtr *T, oldTag uint64, newPtr *T, newTag uint64) bool {
	_, _, combined := tp.masks()
	newAddr := uintptr(unsafe.Pointer(newPtr))
	if newAddr&combined != 0 {
		panic(&PointerMisalignedError{Addr: newAddr, Mask: combined})
	}
	oldWord := tp.pack(uintptr(unsafe.Pointer(oldPtr)), oldTag)
	newWord := tp.pack(newAddr, newTag)
	return tp.word.CompareAndSwapAcqRel(oldWord, newWord)
}

// Equal reports whether tp and other currently hold bitwise-identical
// packed words (same pointer and same tag).
func (tp *TaggedPointer[T]) Equal(other *TaggedPointer[T]) bool {
	return tp.word.LoadAcquire() == other.word.LoadAcquire()
}
