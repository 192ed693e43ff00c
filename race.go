// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package netbuf

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent stress tests for [ByteRing] and [Pool],
// which trigger false positives because the race detector cannot observe
// the happens-before relationships established by atomix's explicit
// memory-ordering operations.
const RaceEnabled = true
