// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
//
// BytePool implements api.BytePool as a thin sync.Pool wrapper for
// fixed-size scratch allocations such as the packet transport's receive
// staging buffer; bulk payload buffers go through BufferPool instead.

package pool

import "sync"

// BytePool pools fixed-size []byte buffers.
type BytePool struct {
	size int
	pool sync.Pool
}

// NewBytePool creates a pool of []byte of exactly size bytes.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.pool.New = func() any { return make([]byte, size) }
	return bp
}

// Acquire returns a slice of at least n bytes.
func (b *BytePool) Acquire(n int) []byte {
	buf := b.pool.Get().([]byte)
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// Release returns a buffer to the pool.
func (b *BytePool) Release(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	b.pool.Put(buf[:cap(buf)])
}
