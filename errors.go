// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For [ByteRing]: a write finds fewer free bytes than it needs, or a read
// or peek finds fewer unread bytes than it asks for. ErrWouldBlock is a control flow signal, not a failure —
// callers should retry later (with backoff) rather than propagate it.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// PointerMisalignedError is raised when a [TaggedPointer] is constructed
// from an address that intersects its own tag mask — either the pointer
// is not aligned to alignof(T), or virtualAddressBits was configured too
// narrow for the platform. This is a programmer error and is never
// returned; it is always delivered via panic.
type PointerMisalignedError struct {
	Addr uintptr
	Mask uintptr
}

func (e *PointerMisalignedError) Error() string {
	return fmt.Sprintf("netbuf: pointer %#x intersects tag mask %#x", e.Addr, e.Mask)
}

// ForeignObjectError is raised when [Pool.Put] is called with an object
// that was not allocated from the receiving pool. This is a programmer
// error and is never returned; it is always delivered via panic.
type ForeignObjectError struct {
	Pool uintptr
}

func (e *ForeignObjectError) Error() string {
	return fmt.Sprintf("netbuf: object does not belong to pool %#x", e.Pool)
}
