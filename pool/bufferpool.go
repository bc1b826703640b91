// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// NUMA-segmented BufferPool manager. Frame payload sizes here are bounded
// by one stream frame or one datagram, so each node gets a single pool
// rather than a size-class table; platform-specific allocators live in
// bufferpool_linux.go and bufferpool_windows.go.

package pool

import (
	"sync"

	"github.com/hioload/zeusq/api"
)

// BufferPoolManager routes buffer leases to a per-NUMA-node pool.
type BufferPoolManager struct {
	mu    sync.RWMutex
	pools map[int]api.BufferPool // key: NUMA node, -1 for system default
}

// NewBufferPoolManager creates an empty manager; node pools are built on
// first use.
func NewBufferPoolManager() *BufferPoolManager {
	return &BufferPoolManager{
		pools: make(map[int]api.BufferPool),
	}
}

// GetPool obtains or lazily creates the pool for numaNode (-1 means
// "system default").
func (m *BufferPoolManager) GetPool(numaNode int) api.BufferPool {
	m.mu.RLock()
	p, ok := m.pools[numaNode]
	m.mu.RUnlock()
	if ok {
		return p
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[numaNode]; ok {
		return p
	}
	p = newBufferPool(numaNode)
	m.pools[numaNode] = p
	return p
}
