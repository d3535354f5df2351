// Package inference bundles a fitted vocabulary and a trained classifier into
// the model used to answer challenges.
package inference

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/neurlang/blobguess/classifier"
	"github.com/neurlang/blobguess/features"
)

// Model is the trained model. It is read only after construction and safe
// for concurrent use.
type Model struct {
	Vocabulary *features.Vocabulary `json:"vocabulary"`
	Classifier *classifier.Model    `json:"classifier"`

	cache *lru.Cache
}

// New bundles a vocabulary with a classifier trained on its vectors.
func New(v *features.Vocabulary, c *classifier.Model) (*Model, error) {
	m := &Model{Vocabulary: v, Classifier: c}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) check() error {
	if m.Vocabulary == nil || m.Classifier == nil {
		return errors.New("model is missing its vocabulary or classifier")
	}
	if err := m.Vocabulary.Check(); err != nil {
		return errors.Wrap(err, "invalid vocabulary")
	}
	if err := m.Classifier.Check(); err != nil {
		return errors.Wrap(err, "invalid classifier")
	}
	if m.Vocabulary.Dim() != m.Classifier.Dim {
		return errors.Errorf("vocabulary has %d terms but classifier expects %d", m.Vocabulary.Dim(), m.Classifier.Dim)
	}
	return nil
}

// EnableCache remembers the vectors of the last size distinct blobs.
func (m *Model) EnableCache(size int) error {
	if size <= 0 {
		m.cache = nil
		return nil
	}
	cache, err := lru.New(size)
	if err != nil {
		return errors.Wrap(err, "error creating vector cache")
	}
	m.cache = cache
	return nil
}

// Vector transforms blob. The returned vector may be shared with the cache
// and must not be modified.
func (m *Model) Vector(blob []byte) features.Vector {
	if m.cache == nil {
		return m.Vocabulary.Transform(blob)
	}
	key := sha256.Sum256(blob)
	if v, ok := m.cache.Get(key); ok {
		return v.(features.Vector)
	}
	v := m.Vocabulary.Transform(blob)
	m.cache.Add(key, v)
	return v
}

// Infer predicts which of the candidates blob belongs to.
func (m *Model) Infer(blob []byte, candidates []string) (string, error) {
	return m.Classifier.Predict(m.Vector(blob), candidates)
}

// Labels returns the labels the model was trained on.
func (m *Model) Labels() []string {
	return m.Classifier.Labels
}
