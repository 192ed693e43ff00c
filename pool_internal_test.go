// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import "testing"

// TestPoolTagBumpsOnlyOnPop pins down spec.md §8 scenario 5: two full
// construct/destroy pairs advance the freelist head's tag by exactly 2,
// not 4 — only Get's pop bumps the tag; Put and growBlock's pushes carry
// it over unchanged.
func TestPoolTagBumpsOnlyOnPop(t *testing.T) {
	type payload struct{ n int }
	p := NewPool[payload](WithBlockMinSize(4))

	tag0, _ := p.head.LoadAcquire()

	obj := p.Get()
	p.Put(obj)
	tag1, _ := p.head.LoadAcquire()
	if tag1 != tag0+1 {
		t.Fatalf("after one construct/destroy pair: tag = %d, want %d", tag1, tag0+1)
	}

	obj = p.Get()
	p.Put(obj)
	tag2, _ := p.head.LoadAcquire()
	if tag2 != tag0+2 {
		t.Fatalf("after two construct/destroy pairs: tag = %d, want %d", tag2, tag0+2)
	}
}
