// Package hash implements the fast modular hash used to bucket byte n-grams.
package hash

// Hash mixes n with the salt s and reduces the result into the range 0 to max-1.
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mixing stage, mix input with salt using subtraction
	var m = n - s

	// hashing stage, use xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mixing stage 2, mix input with salt using addition
	m += s

	// multiply shift reduction by Daniel Lemire instead of modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Bytes hashes a whole byte slice into the full 32 bit range.
// The salt separates otherwise equal inputs, e.g. n-grams of different length.
func Bytes(buf []byte, salt uint32) uint32 {
	var h = Hash(uint32(len(buf)), salt, 0xFFFFFFFF)
	for i := 0; i+4 <= len(buf); i += 4 {
		var word = uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
		h = Hash(h^word, salt, 0xFFFFFFFF)
	}
	if rest := len(buf) % 4; rest != 0 {
		var word uint32
		for j, b := range buf[len(buf)-rest:] {
			word |= uint32(b) << uint32(8*j)
		}
		h = Hash(h^word, salt+1, 0xFFFFFFFF)
	}
	return h
}

// Bucket hashes buf into one of buckets slots using modulo reduction, which
// spreads well when buckets is prime.
func Bucket(buf []byte, salt uint32, buckets uint32) uint32 {
	if buckets == 0 {
		return 0
	}
	return Bytes(buf, salt) % buckets
}
