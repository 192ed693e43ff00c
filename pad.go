// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package netbuf

import "code.hybscloud.com/netbuf/internal/cacheline"

// pad is cache line padding used between hot atomic fields (producer and
// consumer cursors, freelist head and counters) to prevent false sharing.
type pad [cacheline.Size]byte
