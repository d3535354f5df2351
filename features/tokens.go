package features

import "github.com/jbarham/primegen"

import "github.com/neurlang/blobguess/hash"

// Tokens returns the bucket of every overlapping n-gram of blob, for each n
// from minN to maxN inclusive. The n-gram length salts the hash.
func Tokens(blob []byte, minN, maxN int, buckets uint32) []uint32 {
	var size int
	for n := minN; n <= maxN; n++ {
		if len(blob) >= n {
			size += len(blob) - n + 1
		}
	}
	var out = make([]uint32, 0, size)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(blob); i++ {
			out = append(out, hash.Bucket(blob[i:i+n], uint32(n), buckets))
		}
	}
	return out
}

// MaxBuckets is the largest prime that fits in uint32.
const MaxBuckets = 4294967291

// NextPrime returns the smallest prime not smaller than min. Above
// MaxBuckets there is no such uint32 and MaxBuckets is returned.
func NextPrime(min uint32) uint32 {
	if min <= 2 {
		return 2
	}
	if min >= MaxBuckets {
		return MaxBuckets
	}
	p := primegen.New()
	p.SkipTo(uint64(min))
	return uint32(p.Next())
}
