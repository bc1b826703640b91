// File: pool/default.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide default pool manager so the stream and packet queue backends
// share one set of buffer pools for pending-request payload allocation
// instead of fragmenting across per-queue pools.

package pool

import (
	"sync"

	"github.com/hioload/zeusq/api"
)

var (
	defaultOnce sync.Once
	defaultMgr  *BufferPoolManager
)

// DefaultManager returns the process-wide BufferPoolManager.
func DefaultManager() *BufferPoolManager {
	defaultOnce.Do(func() {
		defaultMgr = NewBufferPoolManager()
	})
	return defaultMgr
}

// DefaultPool is a shortcut to fetch the system-default pool (NUMA node -1).
func DefaultPool() api.BufferPool {
	return DefaultManager().GetPool(-1)
}
