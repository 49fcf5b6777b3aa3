package serial

import "sync"

// bufferPool reuses WriteBuffers across Marshal calls. A pooled buffer
// keeps the capacity it grew to.
var bufferPool = sync.Pool{
	New: func() any {
		b := NewWriteBuffer()
		b.Grow(512)
		return b
	},
}

// maxPooledSize keeps one oversized payload from pinning its buffer in the pool.
const maxPooledSize = 64 * 1024

func getBuffer() *WriteBuffer {
	b := bufferPool.Get().(*WriteBuffer)
	b.Reset()
	return b
}

func putBuffer(b *WriteBuffer) {
	if b.Cap() > maxPooledSize {
		return
	}
	bufferPool.Put(b)
}
