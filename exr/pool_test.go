package exr

import (
	"testing"
)

func TestBufferPoolGet(t *testing.T) {
	pool := newBufferPool()

	tests := []struct {
		size    int
		wantCap int
	}{
		{0, 4 << 10},
		{100, 4 << 10},
		{4096, 4 << 10},
		{5000, 16 << 10},
		{1 << 20, 1 << 20},
		{5 << 20, 5 << 20}, // larger than the biggest class
	}

	for _, tt := range tests {
		buf := pool.get(tt.size)
		if len(buf) != tt.size {
			t.Errorf("get(%d) returned len=%d, want %d", tt.size, len(buf), tt.size)
		}
		if cap(buf) != tt.wantCap {
			t.Errorf("get(%d) returned cap=%d, want %d", tt.size, cap(buf), tt.wantCap)
		}
		pool.put(buf)
	}
}

func TestBufferPoolPutForeign(t *testing.T) {
	pool := newBufferPool()

	// Capacity matches no class, so the buffer must not be pooled.
	pool.put(make([]byte, 1000))
	pool.put(nil)

	buf := pool.get(1000)
	if cap(buf) != 4<<10 {
		t.Errorf("cap = %d, want %d", cap(buf), 4<<10)
	}
	if hits, _ := pool.stats(); hits != 0 {
		t.Errorf("hits = %d, want 0", hits)
	}
}

func TestBufferPoolStats(t *testing.T) {
	pool := newBufferPool()

	buf := pool.get(2000)
	if hits, misses := pool.stats(); hits != 0 || misses != 1 {
		t.Errorf("stats after first get = (%d, %d), want (0, 1)", hits, misses)
	}
	pool.put(buf)

	// sync.Pool may drop entries at any time, so only the total is exact.
	pool.get(3000)
	if hits, misses := pool.stats(); hits+misses != 2 {
		t.Errorf("hits+misses = %d, want 2", hits+misses)
	}
}
