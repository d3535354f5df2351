// Package datasets implements the labeled blob dataset types
package datasets

import "math/rand"
import "sort"

// Sample is one labeled observation: a raw binary blob and its label.
type Sample struct {
	Blob  []byte
	Label string
}

// Dataslice is a random access view of labeled samples.
type Dataslice interface {
	Get(n int) Sample
	Len() int
}

// Corpus is an in-memory Dataslice.
type Corpus []Sample

func (c Corpus) Get(n int) Sample {
	return c[n]
}
func (c Corpus) Len() int {
	return len(c)
}

// Labels returns the sorted distinct labels of the dataset.
func Labels(d Dataslice) (labels []string) {
	var seen = make(map[string]struct{})
	for i := 0; i < d.Len(); i++ {
		var l = d.Get(i).Label
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return
}

// Split shuffles the dataset with the seed and moves the holdout fraction of
// samples into the test corpus. The same seed always produces the same split.
func Split(d Dataslice, holdout float64, seed int64) (train, test Corpus) {
	var order = make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	rand.New(rand.NewSource(seed)).Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	var n = 0
	if holdout > 0 {
		n = int(holdout * float64(len(order)))
		if n >= len(order) {
			n = len(order) - 1
		}
		if n < 0 {
			n = 0
		}
	}
	for i, j := range order {
		if i < n {
			test = append(test, d.Get(j))
		} else {
			train = append(train, d.Get(j))
		}
	}
	return
}
