//go:build windows

// File: pool/bufferpool_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows buffer pool: a bounded free list over VirtualAlloc large-page
// regions, falling back to ordinary heap slices when large pages are
// unavailable.

package pool

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hioload/zeusq/api"
)

var (
	kern32           = windows.NewLazySystemDLL("kernel32.dll")
	procVirtualAlloc = kern32.NewProc("VirtualAlloc")
)

const memLargePages = 0x20000000

type windowsBuffer struct {
	data   []byte
	pool   *windowsBufferPool
	numaID int
}

func (b *windowsBuffer) Bytes() []byte { return b.data }

func (b *windowsBuffer) Slice(from, to int) api.Buffer {
	if from < 0 || to > len(b.data) || from > to {
		panic("pool: buffer slice bounds out of range")
	}
	return &windowsBuffer{data: b.data[from:to], pool: b.pool, numaID: b.numaID}
}

func (b *windowsBuffer) Release() { b.pool.put(b) }

func (b *windowsBuffer) Copy() []byte {
	dst := make([]byte, len(b.data))
	copy(dst, b.data)
	return dst
}

func (b *windowsBuffer) NUMANode() int { return b.numaID }

type windowsBufferPool struct {
	free   chan *windowsBuffer
	numaID int

	alloc int64
	freed int64
}

func newBufferPool(numaNode int) api.BufferPool {
	return &windowsBufferPool{
		free:   make(chan *windowsBuffer, 1024),
		numaID: numaNode,
	}
}

func (p *windowsBufferPool) Get(size, numaPreferred int) api.Buffer {
	atomic.AddInt64(&p.alloc, 1)
	select {
	case buf := <-p.free:
		if cap(buf.data) < size {
			buf.data = p.allocate(size)
		}
		buf.data = buf.data[:size]
		return buf
	default:
		return &windowsBuffer{data: p.allocate(size), pool: p, numaID: p.numaID}
	}
}

// allocate commits a large-page region when the OS grants one; the heap
// fallback keeps the pool usable without SeLockMemoryPrivilege.
func (p *windowsBufferPool) allocate(size int) []byte {
	addr, _, err := procVirtualAlloc.Call(
		0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT|memLargePages,
		windows.PAGE_READWRITE,
	)
	if addr == 0 || err != windows.ERROR_SUCCESS {
		return make([]byte, size)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

func (p *windowsBufferPool) Put(b api.Buffer) {
	if wb, ok := b.(*windowsBuffer); ok {
		p.put(wb)
	}
}

func (p *windowsBufferPool) put(b *windowsBuffer) {
	atomic.AddInt64(&p.freed, 1)
	select {
	case p.free <- b:
	default:
	}
}

func (p *windowsBufferPool) Stats() api.BufferPoolStats {
	alloc := atomic.LoadInt64(&p.alloc)
	freed := atomic.LoadInt64(&p.freed)
	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  freed,
		InUse:      alloc - freed,
		NUMAStats:  map[int]int64{p.numaID: alloc - freed},
	}
}
