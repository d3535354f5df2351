package trainer

import "math"

import "github.com/neurlang/blobguess/datasets"
import "github.com/neurlang/blobguess/inference"
import "github.com/neurlang/blobguess/parallel"

// sampleSize calculates the statistically sufficient sample size
// for a given dataset size N and significance level (0–100).
func sampleSize(N int, significance byte) int {
	if N <= 0 {
		return 0
	}
	if significance >= 100 {
		return N
	}

	z := zScoreFromAlpha(100 - significance)

	// worst-case proportion p = 0.5 for max variability
	p := 0.5
	e := float64(100-significance) * 0.01

	numerator := math.Pow(z, 2) * p * (1 - p)
	denominator := math.Pow(e, 2)

	ss := numerator / denominator

	// finite population correction
	correctedSS := ss * float64(N) / (float64(N) - 1 + ss)

	if int(correctedSS) > N {
		return N
	}
	if correctedSS < 1 {
		return 1
	}

	return int(correctedSS)
}

// zScoreFromAlpha returns the Z-score for a given alpha level
// Common: 90% => 1.645, 95% => 1.96, 99% => 2.576
func zScoreFromAlpha(alpha byte) float64 {
	switch {
	case alpha <= 1:
		return 2.576
	case alpha <= 5:
		return 1.96
	case alpha <= 10:
		return 1.645
	default:
		return 1.96
	}
}

// Evaluation is the outcome of evaluating a model on labeled samples.
type Evaluation struct {
	Samples     int
	Correct     int
	Success     int // percent
	Fingerprint [32]byte
}

// Evaluate predicts a statistically sufficient sample of the dataset,
// choosing among all labels the model knows. The fingerprint identifies the
// exact predictions made.
func Evaluate(m *inference.Model, d datasets.Dataslice, significance byte, threads int) Evaluation {
	var l = sampleSize(d.Len(), significance)
	if l == 0 {
		return Evaluation{}
	}
	var labels = m.Labels()
	var index = make(map[string]uint16, len(labels))
	for i, label := range labels {
		index[label] = uint16(i)
	}
	var correct = make([]bool, l)
	var h = parallel.NewUint16Hasher(l)
	parallel.ForEach(l, parallel.Threads(threads), func(j int) {
		var s = d.Get(j)
		predicted, err := m.Infer(s.Blob, labels)
		if err != nil {
			h.MustPutUint16(j, 0xFFFF)
			return
		}
		h.MustPutUint16(j, index[predicted])
		correct[j] = predicted == s.Label
	})
	var e = Evaluation{Samples: l, Fingerprint: h.Sum()}
	for _, ok := range correct {
		if ok {
			e.Correct++
		}
	}
	e.Success = e.Correct * 100 / l
	return e
}
