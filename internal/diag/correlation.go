package diag

import "github.com/google/uuid"

// NewCorrelationID returns a fresh identifier for one evaluation, threaded
// through every trace log line emitted during that evaluation so a reader
// can reconstruct the full pipeline for a single event.
func NewCorrelationID() string {
	return uuid.NewString()
}
