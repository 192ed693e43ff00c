// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build arm64

package cacheline

// Size is the L1 cache line size for ARM64 architectures.
// Apple Silicon uses 128-byte L2 cache lines; L1 is 64 bytes on most
// implementations. 128 is used as a conservative value so producer and
// consumer fields never share a line on either.
const Size = 128
