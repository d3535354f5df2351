package trainer

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/classifier"
	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/features"
	"github.com/neurlang/blobguess/inference"
)

// Report describes a finished training run.
type Report struct {
	Train   int
	Holdout int
	Labels  []string
	Terms   int

	Evaluation Evaluation
}

// Train fits a model on the corpus and evaluates it on the holdout split.
// Errors from the classifier keep their *classifier.TrainingError type.
func Train(corpus datasets.Dataslice, h HyperParameters, log *zap.Logger) (*inference.Model, *Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if corpus == nil || corpus.Len() == 0 {
		return nil, nil, &classifier.TrainingError{Reason: "empty training set"}
	}

	train, holdout := datasets.Split(corpus, h.Holdout, h.Seed)
	tally := datasets.TallyOf(train)
	for _, label := range tally.Labels() {
		log.Debug("training label", zap.String("label", label), zap.Int("samples", tally.Count(label)))
	}
	log.Info("training started",
		zap.Int("train", tally.Len()),
		zap.Int("holdout", holdout.Len()),
		zap.Int("labels", len(tally.Labels())))

	vocabulary, err := features.Fit(train, h.Features)
	if err != nil {
		return nil, nil, &classifier.TrainingError{Reason: fmt.Sprintf("fitting vocabulary: %v", err)}
	}
	log.Info("vocabulary fitted", zap.Int("terms", vocabulary.Dim()), zap.Uint32("buckets", vocabulary.Buckets))

	var vectors = vocabulary.TransformBatch(train, h.Threads)
	var labels = make([]string, train.Len())
	for i := range labels {
		labels[i] = train.Get(i).Label
	}
	model, err := classifier.Train(vectors, labels, h.Classifier)
	if err != nil {
		return nil, nil, err
	}

	m, err := inference.New(vocabulary, model)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error assembling model")
	}

	var report = &Report{
		Train:   train.Len(),
		Holdout: holdout.Len(),
		Labels:  model.Labels,
		Terms:   vocabulary.Dim(),
	}
	if holdout.Len() > 0 {
		report.Evaluation = Evaluate(m, holdout, h.Significance, h.Threads)
		log.Info("[success rate]",
			zap.Int("percent", report.Evaluation.Success),
			zap.Int("correct", report.Evaluation.Correct),
			zap.Int("samples", report.Evaluation.Samples),
			zap.String("fingerprint", fmt.Sprintf("%x", report.Evaluation.Fingerprint)))
	}
	return m, report, nil
}
