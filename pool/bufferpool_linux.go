//go:build linux

// File: pool/bufferpool_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux buffer pool: sync.Pool-backed payload buffers with allocation
// accounting. Payloads are bounded by one frame, so buffers are reused
// whole and regrown in place when a larger frame arrives.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/hioload/zeusq/api"
)

type linuxBuffer struct {
	data   []byte
	pool   *linuxBufferPool
	numaID int
}

func (b *linuxBuffer) Bytes() []byte { return b.data }

func (b *linuxBuffer) Slice(from, to int) api.Buffer {
	if from < 0 || to > len(b.data) || from > to {
		panic("pool: buffer slice bounds out of range")
	}
	return &linuxBuffer{data: b.data[from:to], pool: b.pool, numaID: b.numaID}
}

func (b *linuxBuffer) Release() { b.pool.put(b) }

func (b *linuxBuffer) Copy() []byte {
	dst := make([]byte, len(b.data))
	copy(dst, b.data)
	return dst
}

func (b *linuxBuffer) NUMANode() int { return b.numaID }

type linuxBufferPool struct {
	pool   sync.Pool
	numaID int

	alloc int64
	freed int64
}

func (bp *linuxBufferPool) Get(size, numaPreferred int) api.Buffer {
	atomic.AddInt64(&bp.alloc, 1)
	v := bp.pool.Get()
	if v == nil {
		return &linuxBuffer{data: make([]byte, size), pool: bp, numaID: bp.numaID}
	}
	buf := v.(*linuxBuffer)
	if cap(buf.data) < size {
		buf.data = make([]byte, size)
	}
	buf.data = buf.data[:size]
	return buf
}

func (bp *linuxBufferPool) Put(b api.Buffer) {
	if lb, ok := b.(*linuxBuffer); ok {
		bp.put(lb)
	}
}

func (bp *linuxBufferPool) put(b *linuxBuffer) {
	atomic.AddInt64(&bp.freed, 1)
	bp.pool.Put(b)
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	alloc := atomic.LoadInt64(&bp.alloc)
	freed := atomic.LoadInt64(&bp.freed)
	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  freed,
		InUse:      alloc - freed,
		NUMAStats:  map[int]int64{bp.numaID: alloc - freed},
	}
}

func newBufferPool(numaNode int) api.BufferPool {
	return &linuxBufferPool{numaID: numaNode}
}
