package utils

import (
	"bytes"
	"sync"
)

// BufferPool manages a pool of reusable bytes.Buffer objects
// to reduce memory allocations while many documents render at once.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a new BufferPool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

// Get retrieves a buffer from the pool
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put returns a buffer to the pool, resetting it for reuse.
// If the buffer is too large, it is discarded to prevent memory hoarding.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > MaxBufferSize {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

var SharedBufferPool = NewBufferPool()
