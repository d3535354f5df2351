package trainer

import "github.com/neurlang/blobguess/classifier"
import "github.com/neurlang/blobguess/features"

type HyperParameters struct {
	Threads int // number of threads for transforming and evaluating, 0 is all cores

	Features   features.Options
	Classifier classifier.Options

	Holdout      float64 // fraction of the corpus kept aside for evaluation
	Significance byte    // confidence of the evaluation sample size, 0-100
	Seed         int64   // seed of the holdout split
}

// Defaults returns the hyperparameters used when nothing is configured.
func Defaults() HyperParameters {
	return HyperParameters{
		Features:     features.DefaultOptions(),
		Classifier:   classifier.DefaultOptions(),
		Holdout:      0.1,
		Significance: 95,
		Seed:         1,
	}
}
