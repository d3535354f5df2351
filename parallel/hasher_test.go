package parallel

import "testing"
import "sync/atomic"

// hasher test
func TestHasher(t *testing.T) {
	h := NewUint16Hasher(100)
	for n := uint16(0); n < 100; n++ {
		h.MustPutUint16(int(n), n)
	}
	h2 := NewUint16Hasher(100)
	for n := 99; n >= 0; n-- {
		h2.MustPutUint16(n, uint16(n))
	}
	if h.Sum() != h2.Sum() {
		t.Errorf("write order changed the hash: %x != %x", h.Sum(), h2.Sum())
	}
	h3 := NewUint16Hasher(100)
	for n := uint16(0); n < 100; n++ {
		h3.MustPutUint16(int(n), n+1)
	}
	if h.Sum() == h3.Sum() {
		t.Errorf("different values produced the same hash: %x", h.Sum())
	}
}

func TestHasherDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("duplicate write did not panic")
		}
	}()
	h := NewUint16Hasher(2)
	h.MustPutUint16(1, 1)
	h.MustPutUint16(1, 1)
}

func TestForEach(t *testing.T) {
	var sum atomic.Int64
	ForEach(1000, 8, func(i int) {
		sum.Add(int64(i))
	})
	if sum.Load() != 999*1000/2 {
		t.Errorf("ForEach visited wrong indexes, sum %d", sum.Load())
	}
	ForEach(0, 8, func(i int) {
		t.Errorf("body called for empty loop")
	})
}

func TestThreads(t *testing.T) {
	if Threads(3) != 3 {
		t.Errorf("explicit thread count not honoured")
	}
	if Threads(0) < 1 {
		t.Errorf("Threads(0) must be positive")
	}
}
