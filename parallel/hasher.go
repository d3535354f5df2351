package parallel

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// Hasher fingerprints a sequence of uint16 values that may be written out of
// order by concurrent goroutines. The sum only depends on the values and
// their positions, so two evaluations producing the same predictions produce
// the same fingerprint.
type Hasher struct {
	mut     sync.Mutex
	data    []uint16
	written []bool
}

// NewUint16Hasher creates a hasher for n positions.
func NewUint16Hasher(n int) *Hasher {
	return &Hasher{
		data:    make([]uint16, n),
		written: make([]bool, n),
	}
}

// MustPutUint16 stores value at position n. Writing a position twice panics.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	h.mut.Lock()
	defer h.mut.Unlock()

	if n < 0 || n >= len(h.data) {
		panic("position out of range")
	}
	if h.written[n] {
		panic("duplicate write")
	}
	h.written[n] = true
	h.data[n] = value
}

// Sum returns the sha256 of all positions in order. Unwritten positions hash as zero.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()

	var sha = sha256.New()
	var buf [2]byte
	for _, v := range h.data {
		binary.LittleEndian.PutUint16(buf[:], v)
		sha.Write(buf[:])
	}
	copy(ret[:], sha.Sum(nil))
	return
}
