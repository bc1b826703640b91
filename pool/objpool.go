// File: pool/objpool.go
// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT
//
// SyncPool recycles short-lived, fixed-shape objects (e.g. the queue
// engine's PendingRequest records) across push/pop submissions. It
// satisfies api.ObjectPool[T].

package pool

import "sync"

// SyncPool wraps sync.Pool for generic usage.
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

func (sp *SyncPool[T]) Put(obj T) {
	sp.pool.Put(obj)
}
