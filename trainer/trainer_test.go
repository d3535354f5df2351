package trainer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/classifier"
	"github.com/neurlang/blobguess/datasets"
)

// synthetic corpus where each label draws its bytes from a disjoint alphabet
func synthetic(n int) datasets.Corpus {
	r := rand.New(rand.NewSource(42))
	alphabets := map[string][]byte{
		"x86":  {0x55, 0x89, 0xe5, 0xc3, 0x90},
		"mips": {0x27, 0xbd, 0x03, 0xe0, 0x08},
		"arm":  {0xe5, 0x2d, 0xe9, 0x1e, 0xff},
	}
	labels := []string{"arm", "mips", "x86"}
	var c datasets.Corpus
	for i := 0; i < n; i++ {
		label := labels[i%len(labels)]
		blob := make([]byte, 32)
		for j := range blob {
			blob[j] = alphabets[label][r.Intn(len(alphabets[label]))]
		}
		c = append(c, datasets.Sample{Blob: blob, Label: label})
	}
	return c
}

func TestSampleSize(t *testing.T) {
	assert.Equal(t, 0, sampleSize(0, 95))
	assert.Equal(t, 1, sampleSize(1, 95))
	assert.Equal(t, 277, sampleSize(1000, 95))
	assert.Equal(t, 50, sampleSize(50, 100))
	assert.LessOrEqual(t, sampleSize(10, 95), 10)
}

func TestTrain(t *testing.T) {
	h := Defaults()
	h.Holdout = 0.2
	h.Threads = 2

	m, report, err := Train(synthetic(300), h, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, []string{"arm", "mips", "x86"}, report.Labels)
	assert.Equal(t, 240, report.Train)
	assert.Equal(t, 60, report.Holdout)
	assert.Greater(t, report.Terms, 0)
	assert.Greater(t, report.Evaluation.Samples, 0)
	assert.GreaterOrEqual(t, report.Evaluation.Success, 90)
}

func TestTrainReproducible(t *testing.T) {
	h := Defaults()
	h.Holdout = 0.2
	_, a, err := Train(synthetic(90), h, nil)
	require.NoError(t, err)
	_, b, err := Train(synthetic(90), h, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Evaluation.Fingerprint, b.Evaluation.Fingerprint)
}

func TestTrainErrors(t *testing.T) {
	var te *classifier.TrainingError

	_, _, err := Train(datasets.Corpus{}, Defaults(), nil)
	assert.True(t, errors.As(err, &te))

	h := Defaults()
	h.Features.MinN = 0
	_, _, err = Train(synthetic(9), h, nil)
	assert.True(t, errors.As(err, &te))

	corpus := synthetic(9)
	corpus[0].Label = ""
	h = Defaults()
	h.Holdout = 0
	_, _, err = Train(corpus, h, nil)
	assert.True(t, errors.As(err, &te))
}
