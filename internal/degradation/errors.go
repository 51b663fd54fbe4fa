package degradation

import "errors"

var (
	// ErrEmptyTrainingSet is returned when a training request produces no
	// samples. The currently served snapshot, if any, is left untouched.
	ErrEmptyTrainingSet = errors.New("training set is empty")

	// ErrTrainingInProgress is returned when a training run is already
	// underway. Callers retry rather than queue.
	ErrTrainingInProgress = errors.New("training already in progress")
)
