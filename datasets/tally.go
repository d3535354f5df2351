package datasets

import "sort"
import "sync"

// Tally counts samples per label. It is safe for concurrent use.
type Tally struct {
	counts map[string]int

	mut sync.Mutex
}

// Init resets the tally to be empty
func (t *Tally) Init() {
	t.mut.Lock()
	t.counts = make(map[string]int)
	t.mut.Unlock()
}

// Add counts one sample of label
func (t *Tally) Add(label string) {
	t.mut.Lock()
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	t.counts[label]++
	t.mut.Unlock()
}

// Count returns the number of samples of label
func (t *Tally) Count(label string) int {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.counts[label]
}

// Len returns the total number of counted samples
func (t *Tally) Len() (o int) {
	t.mut.Lock()
	for _, c := range t.counts {
		o += c
	}
	t.mut.Unlock()
	return
}

// Labels returns the counted labels, most frequent first
func (t *Tally) Labels() (labels []string) {
	t.mut.Lock()
	defer t.mut.Unlock()
	for l := range t.counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if t.counts[labels[i]] != t.counts[labels[j]] {
			return t.counts[labels[i]] > t.counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return
}

// TallyOf counts all samples of the dataset
func TallyOf(d Dataslice) *Tally {
	var t = new(Tally)
	t.Init()
	for i := 0; i < d.Len(); i++ {
		t.Add(d.Get(i).Label)
	}
	return t
}
