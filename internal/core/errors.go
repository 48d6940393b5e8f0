package core

import "errors"

var (
	// ErrEmptyInput is returned when the submitted text is blank
	ErrEmptyInput = errors.New("please enter an email to analyze")
	// ErrModelUnavailable is returned when the artifacts failed to load
	ErrModelUnavailable = errors.New("model not loaded properly - please check your model files")
	// ErrPrediction wraps failures raised by the vectorizer or classifier
	ErrPrediction = errors.New("prediction failed")
	// ErrUnexpectedLabel is returned when the classifier emits a label outside {0, 1}
	ErrUnexpectedLabel = errors.New("classifier returned an unexpected label")
)
