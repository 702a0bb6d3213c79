package sharedbuf

import (
	"github.com/valyala/bytebufferpool"
)

// Allocator supplies the backing arrays for connection buffers. Buffers
// acquire storage on creation and release it on shutdown, so a pooled
// allocator keeps per-connection allocations close to zero on busy servers.
type Allocator interface {
	Acquire(size int) *bytebufferpool.ByteBuffer
	Release(b *bytebufferpool.ByteBuffer)
}

// PoolAllocator hands out storage from the process-wide byte buffer pool.
type PoolAllocator struct{}

func (PoolAllocator) Acquire(size int) *bytebufferpool.ByteBuffer {
	bb := bytebufferpool.Get()
	if cap(bb.B) < size {
		bb.B = make([]byte, size)
	} else {
		bb.B = bb.B[:size]
	}

	return bb
}

func (PoolAllocator) Release(b *bytebufferpool.ByteBuffer) {
	bytebufferpool.Put(b)
}
