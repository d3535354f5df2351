package classifier

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/blobguess/features"
)

// three labels, each owning one feature dimension
func trained(t *testing.T) *Model {
	vectors := []features.Vector{
		{1, 0, 0}, {0.9, 0.1, 0},
		{0, 1, 0}, {0.1, 0.9, 0},
		{0, 0, 1}, {0, 0.1, 0.9},
	}
	labels := []string{"x86", "x86", "mips", "mips", "arm", "arm"}
	m, err := Train(vectors, labels, DefaultOptions())
	require.NoError(t, err)
	return m
}

func TestTrainErrors(t *testing.T) {
	var te *TrainingError

	_, err := Train(nil, nil, DefaultOptions())
	require.True(t, errors.As(err, &te), "got %v", err)

	_, err = Train([]features.Vector{{1}}, nil, DefaultOptions())
	require.True(t, errors.As(err, &te))

	_, err = Train([]features.Vector{{1}, {0}}, []string{"a"}, DefaultOptions())
	require.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "2 vectors but 1 labels")

	_, err = Train([]features.Vector{{1, 0}, {0}}, []string{"a", "b"}, DefaultOptions())
	require.True(t, errors.As(err, &te))

	_, err = Train([]features.Vector{{1}}, []string{""}, DefaultOptions())
	require.True(t, errors.As(err, &te))

	_, err = Train([]features.Vector{{1}}, []string{"a"}, Options{})
	require.True(t, errors.As(err, &te))
}

func TestTrain(t *testing.T) {
	m := trained(t)
	assert.Equal(t, []string{"arm", "mips", "x86"}, m.Labels)
	assert.Equal(t, 3, m.Dim)
	assert.NoError(t, m.Check())
}

func TestTop(t *testing.T) {
	m := trained(t)
	for v, want := range map[int]string{0: "x86", 1: "mips", 2: "arm"} {
		vec := features.Vector{0, 0, 0}
		vec[v] = 1
		got, err := m.Top(vec)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPredictRestrictedToCandidates(t *testing.T) {
	m := trained(t)
	x86 := features.Vector{1, 0, 0}

	t.Run("natural choice inside the set", func(t *testing.T) {
		got, err := m.Predict(x86, []string{"mips", "x86"})
		require.NoError(t, err)
		assert.Equal(t, "x86", got)
	})

	t.Run("natural choice outside the set", func(t *testing.T) {
		top, err := m.Top(x86)
		require.NoError(t, err)
		require.Equal(t, "x86", top)

		got, err := m.Predict(x86, []string{"mips", "arm"})
		require.NoError(t, err)
		assert.Contains(t, []string{"mips", "arm"}, got)
	})

	t.Run("unknown candidates rank last", func(t *testing.T) {
		got, err := m.Predict(x86, []string{"sparc", "mips"})
		require.NoError(t, err)
		assert.Equal(t, "mips", got)
	})

	t.Run("only unknown candidates", func(t *testing.T) {
		got, err := m.Predict(x86, []string{"alpha", "bravo"})
		require.NoError(t, err)
		assert.Equal(t, "alpha", got)
	})
}

func TestPredictMembershipProperty(t *testing.T) {
	m := trained(t)
	all := []string{"arm", "mips", "x86", "sparc", "avr"}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		vec := features.Vector{r.Float64(), r.Float64(), r.Float64()}
		var candidates []string
		for _, l := range all {
			if r.Intn(2) == 0 {
				candidates = append(candidates, l)
			}
		}
		if len(candidates) == 0 {
			candidates = []string{all[r.Intn(len(all))]}
		}
		got, err := m.Predict(vec, candidates)
		require.NoError(t, err)
		assert.Contains(t, candidates, got)
	}
}

func TestPredictErrors(t *testing.T) {
	m := trained(t)
	var pe *PredictionError

	_, err := m.Predict(features.Vector{1, 0, 0}, nil)
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "no candidate labels")

	_, err = m.Predict(features.Vector{1, 0}, []string{"x86"})
	require.True(t, errors.As(err, &pe))
}

func TestScores(t *testing.T) {
	m := trained(t)
	scores, err := m.Scores(features.Vector{0, 0, 0})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	// balanced classes and an empty vector: priors only
	assert.InDelta(t, scores[0], scores[1], 1e-12)
	assert.InDelta(t, scores[1], scores[2], 1e-12)
}

func TestCheck(t *testing.T) {
	assert.Error(t, (&Model{}).Check())
	m := trained(t)
	broken := &Model{Dim: 4, Labels: m.Labels, Priors: m.Priors, Likelihoods: m.Likelihoods}
	assert.Error(t, broken.Check())
}
