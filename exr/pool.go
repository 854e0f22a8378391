package exr

import (
	"sync"
	"sync/atomic"
)

// bufferPool hands out scratch buffers for block decompression in a few
// fixed size classes. Buffers larger than the biggest class are allocated
// directly and dropped on put.
type bufferPool struct {
	pools  []*sync.Pool
	hits   atomic.Int64
	misses atomic.Int64
}

// bufferSizes are the capacity classes of pooled buffers. A 16-line ZIP
// block of a 4K RGBA half image is 512 KB.
var bufferSizes = []int{
	4 << 10,
	16 << 10,
	64 << 10,
	256 << 10,
	1 << 20,
	4 << 20,
}

// blockBuffers is shared by all decodes.
var blockBuffers = newBufferPool()

func newBufferPool() *bufferPool {
	p := &bufferPool{pools: make([]*sync.Pool, len(bufferSizes))}
	for i := range bufferSizes {
		p.pools[i] = &sync.Pool{}
	}
	return p
}

// poolIndex returns the smallest class that holds size bytes, or -1.
func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// get returns a buffer of length size. Its contents are undefined.
func (p *bufferPool) get(size int) []byte {
	idx := poolIndex(size)
	if idx < 0 {
		p.misses.Add(1)
		return make([]byte, size)
	}
	if buf, ok := p.pools[idx].Get().(*[]byte); ok {
		p.hits.Add(1)
		return (*buf)[:size]
	}
	p.misses.Add(1)
	return make([]byte, size, bufferSizes[idx])
}

// put returns buf to its class. Buffers not obtained from get are ignored.
func (p *bufferPool) put(buf []byte) {
	idx := poolIndex(cap(buf))
	if idx < 0 || cap(buf) != bufferSizes[idx] {
		return
	}
	buf = buf[:0]
	p.pools[idx].Put(&buf)
}

// stats returns the number of gets served from the pool and the number
// that allocated.
func (p *bufferPool) stats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}
