// Package trainer provides high-level training orchestration: it fits the
// vocabulary, trains the classifier and measures the success rate on a
// holdout split before the model is used against the challenge service.
package trainer
