package buffer

import (
	"sync"
	"sync/atomic"
)

// Pool hands out zeroed blocks of one fixed size. Recyclings allocate
// audio signal streams from it so finished runs return their memory
// without GC churn in the tick loop.
type Pool struct {
	size int
	pool sync.Pool

	outstanding atomic.Int64
}

// NewPool returns a Pool producing blocks of size frames.
func NewPool(size int) *Pool {
	if size < 0 {
		size = 0
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		return &Buffer{}
	}
	return p
}

// BlockSize returns the frame count of every block.
func (p *Pool) BlockSize() int {
	return p.size
}

// Get returns a zeroed block. Callers must return it via Put when done.
func (p *Pool) Get() *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Resize(p.size)
	b.Zero()
	p.outstanding.Add(1)
	return b
}

// Put returns a block to the pool.
// The caller must not use the buffer after calling Put.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.outstanding.Add(-1)
	p.pool.Put(b)
}

// Outstanding returns the number of blocks handed out and not yet returned.
func (p *Pool) Outstanding() int {
	return int(p.outstanding.Load())
}
