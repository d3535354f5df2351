package features

import (
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/parallel"
)

// ErrEmptyCorpus is returned when fitting on a corpus without samples.
var ErrEmptyCorpus = errors.New("empty corpus")

// Options configure tokenization and vocabulary size.
type Options struct {
	MinN     int    // shortest n-gram
	MaxN     int    // longest n-gram
	Buckets  uint32 // hash table size, rounded up to a prime
	MaxTerms int    // vocabulary size limit
	Threads  int    // 0 means one per logical core
}

// DefaultOptions returns unigrams to trigrams over 64k buckets, keeping 4096 terms.
func DefaultOptions() Options {
	return Options{
		MinN:     1,
		MaxN:     3,
		Buckets:  1 << 16,
		MaxTerms: 4096,
	}
}

// Validate reports invalid options.
func (o Options) Validate() error {
	switch {
	case o.MinN < 1:
		return errors.Errorf("min n-gram length %d must be at least 1", o.MinN)
	case o.MaxN < o.MinN:
		return errors.Errorf("max n-gram length %d is below min %d", o.MaxN, o.MinN)
	case o.Buckets < 1:
		return errors.New("bucket count must be positive")
	case o.Buckets > MaxBuckets:
		return errors.Errorf("bucket count %d is above %d", o.Buckets, uint32(MaxBuckets))
	case o.MaxTerms < 1:
		return errors.Errorf("max terms %d must be positive", o.MaxTerms)
	}
	return nil
}

// Vector is a feature vector, one entry per vocabulary term.
type Vector []float64

// Vocabulary is the fitted term table. It is immutable after Fit and safe
// for concurrent use.
type Vocabulary struct {
	MinN      int       `json:"min_n"`
	MaxN      int       `json:"max_n"`
	Buckets   uint32    `json:"buckets"`
	Documents int       `json:"documents"`
	Terms     []uint32  `json:"terms"`
	Weights   []float64 `json:"weights"`

	once  sync.Once
	index map[uint32]int
}

// Fit learns the vocabulary of the corpus. The result only depends on the
// corpus and the options.
func Fit(corpus datasets.Dataslice, opts Options) (*Vocabulary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if corpus == nil || corpus.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	var buckets = NextPrime(opts.Buckets)
	var df = make(map[uint32]int)
	var mut sync.Mutex

	parallel.ForEach(corpus.Len(), parallel.Threads(opts.Threads), func(i int) {
		var seen = make(map[uint32]struct{})
		for _, t := range Tokens(corpus.Get(i).Blob, opts.MinN, opts.MaxN, buckets) {
			seen[t] = struct{}{}
		}
		mut.Lock()
		for t := range seen {
			df[t]++
		}
		mut.Unlock()
	})

	var terms = make([]uint32, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > opts.MaxTerms {
		terms = terms[:opts.MaxTerms]
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })

	var v = &Vocabulary{
		MinN:      opts.MinN,
		MaxN:      opts.MaxN,
		Buckets:   buckets,
		Documents: corpus.Len(),
		Terms:     terms,
		Weights:   make([]float64, len(terms)),
	}
	var n = float64(corpus.Len())
	for i, t := range terms {
		v.Weights[i] = 1 + math.Log10((1+n)/(1+float64(df[t])))
	}
	return v, nil
}

// Dim is the length of every vector produced by Transform.
func (v *Vocabulary) Dim() int {
	return len(v.Terms)
}

// Check reports a vocabulary that can not have been produced by Fit,
// typically a corrupted model file.
func (v *Vocabulary) Check() error {
	if err := (Options{MinN: v.MinN, MaxN: v.MaxN, Buckets: v.Buckets, MaxTerms: 1}).Validate(); err != nil {
		return err
	}
	if len(v.Terms) != len(v.Weights) {
		return errors.Errorf("vocabulary has %d terms but %d weights", len(v.Terms), len(v.Weights))
	}
	return nil
}

func (v *Vocabulary) lookup() map[uint32]int {
	v.once.Do(func() {
		v.index = make(map[uint32]int, len(v.Terms))
		for i, t := range v.Terms {
			v.index[t] = i
		}
	})
	return v.index
}

// Transform projects blob onto the vocabulary: term frequency times term
// weight, L2 normalized. Blobs without any known n-gram map to the zero vector.
func (v *Vocabulary) Transform(blob []byte) Vector {
	var out = make(Vector, len(v.Terms))
	var tokens = Tokens(blob, v.MinN, v.MaxN, v.Buckets)
	if len(tokens) == 0 {
		return out
	}
	var index = v.lookup()
	for _, t := range tokens {
		if i, ok := index[t]; ok {
			out[i]++
		}
	}
	var total = float64(len(tokens))
	var norm float64
	for i := range out {
		out[i] = out[i] / total * v.Weights[i]
		norm += out[i] * out[i]
	}
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range out {
		out[i] /= norm
	}
	return out
}

// TransformBatch transforms every sample of the dataset concurrently.
// out[i] equals Transform(d.Get(i).Blob).
func (v *Vocabulary) TransformBatch(d datasets.Dataslice, threads int) []Vector {
	var out = make([]Vector, d.Len())
	parallel.ForEach(d.Len(), parallel.Threads(threads), func(i int) {
		out[i] = v.Transform(d.Get(i).Blob)
	})
	return out
}
