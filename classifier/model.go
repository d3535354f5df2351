// Package classifier implements a naive Bayes classifier over feature vectors
// with predictions restricted to a candidate label set.
package classifier

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/neurlang/blobguess/features"
)

// Options configure training.
type Options struct {
	Smoothing float64 // additive smoothing of term weights, must be positive
}

// DefaultOptions uses add-one smoothing.
func DefaultOptions() Options {
	return Options{Smoothing: 1}
}

// Model is a trained multinomial naive Bayes model. It learns log p(label)
// and log p(term|label) from the tf-idf weight mass of each term per label.
// It is immutable after Train and safe for concurrent use.
type Model struct {
	Dim         int         `json:"dim"`
	Labels      []string    `json:"labels"`
	Priors      []float64   `json:"priors"`
	Likelihoods [][]float64 `json:"likelihoods"`

	once  sync.Once
	index map[string]int
}

// Train fits the model on aligned vectors and labels.
func Train(vectors []features.Vector, labels []string, opts Options) (*Model, error) {
	switch {
	case len(vectors) == 0 || len(labels) == 0:
		return nil, &TrainingError{Reason: "empty training set"}
	case len(vectors) != len(labels):
		return nil, &TrainingError{Reason: fmt.Sprintf("%d vectors but %d labels", len(vectors), len(labels))}
	case !(opts.Smoothing > 0):
		return nil, &TrainingError{Reason: fmt.Sprintf("smoothing %v must be positive", opts.Smoothing)}
	}

	var dim = len(vectors[0])
	var seen = make(map[string]struct{})
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &TrainingError{Reason: fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(v), dim)}
		}
		if labels[i] == "" {
			return nil, &TrainingError{Reason: fmt.Sprintf("sample %d has an empty label", i)}
		}
		seen[labels[i]] = struct{}{}
	}

	var m = &Model{Dim: dim}
	for l := range seen {
		m.Labels = append(m.Labels, l)
	}
	sort.Strings(m.Labels)
	var index = m.lookup()

	var docs = make([]float64, len(m.Labels))
	var mass = make([][]float64, len(m.Labels))
	for i := range mass {
		mass[i] = make([]float64, dim)
	}
	for i, v := range vectors {
		var c = index[labels[i]]
		docs[c]++
		for j, x := range v {
			mass[c][j] += x
		}
	}

	m.Priors = make([]float64, len(m.Labels))
	m.Likelihoods = make([][]float64, len(m.Labels))
	for c := range m.Labels {
		m.Priors[c] = math.Log(docs[c] / float64(len(vectors)))

		var total float64
		for _, x := range mass[c] {
			total += x
		}
		var denominator = total + opts.Smoothing*float64(dim)
		m.Likelihoods[c] = make([]float64, dim)
		for j, x := range mass[c] {
			m.Likelihoods[c][j] = math.Log((x + opts.Smoothing) / denominator)
		}
	}
	return m, nil
}

// Check reports a model that can not have been produced by Train,
// typically a corrupted model file.
func (m *Model) Check() error {
	if len(m.Labels) == 0 {
		return &TrainingError{Reason: "model has no labels"}
	}
	if len(m.Priors) != len(m.Labels) || len(m.Likelihoods) != len(m.Labels) {
		return &TrainingError{Reason: "model tables do not match its labels"}
	}
	for c, row := range m.Likelihoods {
		if len(row) != m.Dim {
			return &TrainingError{Reason: fmt.Sprintf("label %q has %d weights, expected %d", m.Labels[c], len(row), m.Dim)}
		}
	}
	return nil
}

func (m *Model) lookup() map[string]int {
	m.once.Do(func() {
		m.index = make(map[string]int, len(m.Labels))
		for i, l := range m.Labels {
			m.index[l] = i
		}
	})
	return m.index
}

// Scores returns the unnormalized log posterior of every label, aligned with Labels.
func (m *Model) Scores(v features.Vector) ([]float64, error) {
	if len(v) != m.Dim {
		return nil, &PredictionError{Reason: fmt.Sprintf("vector dimension %d, model expects %d", len(v), m.Dim)}
	}
	var scores = make([]float64, len(m.Labels))
	for c := range m.Labels {
		var s = m.Priors[c]
		for j, x := range v {
			if x != 0 {
				s += x * m.Likelihoods[c][j]
			}
		}
		scores[c] = s
	}
	return scores, nil
}

// Top returns the best label over all labels the model was trained on.
func (m *Model) Top(v features.Vector) (string, error) {
	return m.Predict(v, m.Labels)
}

// Predict returns the highest scoring label among candidates. Only the
// candidates are scored, so the answer is always one of them: candidates the
// model has never seen rank last, and ties go to the earlier candidate.
func (m *Model) Predict(v features.Vector, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", &PredictionError{Reason: "no candidate labels"}
	}
	scores, err := m.Scores(v)
	if err != nil {
		return "", err
	}
	var index = m.lookup()
	var best = candidates[0]
	var bestScore = math.Inf(-1)
	for _, c := range candidates {
		i, ok := index[c]
		if !ok {
			continue
		}
		if scores[i] > bestScore {
			best, bestScore = c, scores[i]
		}
	}
	return best, nil
}
