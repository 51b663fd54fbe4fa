package race

import "errors"

var (
	// ErrAgentNotTrained is returned by Plan before any training episode
	// has completed.
	ErrAgentNotTrained = errors.New("pit strategy agent not trained")

	// ErrTrainingInProgress is returned when an optimization run is
	// already underway.
	ErrTrainingInProgress = errors.New("agent training already in progress")
)
