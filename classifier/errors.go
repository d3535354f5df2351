package classifier

// TrainingError reports training data the model can not be fitted on.
type TrainingError struct {
	Reason string
}

func (e *TrainingError) Error() string {
	return "training error: " + e.Reason
}

// PredictionError reports a prediction request that can not be answered.
type PredictionError struct {
	Reason string
}

func (e *PredictionError) Error() string {
	return "prediction error: " + e.Reason
}
