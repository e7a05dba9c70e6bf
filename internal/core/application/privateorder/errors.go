package privateorder

import (
	"errors"
	"fmt"

	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

var (
	// ErrPipelineBusy is returned when submitting a private order while
	// another one is in progress. Concurrent pipelines would share the same
	// intermediate-hop balance baseline.
	ErrPipelineBusy = errors.New("another private order is in progress")
	// ErrCancelNotAllowed is returned when cancelling a private order whose
	// funds are already in transit, or that's already terminal.
	ErrCancelNotAllowed = errors.New("private order can't be cancelled")
	// ErrPrivateOrderNotFound ...
	ErrPrivateOrderNotFound = errors.New("private order not found")
	// ErrInvalidRequest ...
	ErrInvalidRequest = errors.New("invalid private order request")
	// ErrServiceStopped ...
	ErrServiceStopped = errors.New("private order service is stopped")
)

// PipelineError reports the failure of a private order pipeline together
// with the stage that failed and the last one completed.
type PipelineError struct {
	Uuid               string
	Stage              domain.Stage
	LastCompletedStage domain.Stage
	Err                error
}

func (e *PipelineError) Error() string {
	uuid := e.Uuid
	if uuid == "" {
		uuid = "(not created)"
	}
	return fmt.Sprintf(
		"private order %s failed at stage %s, last completed stage %s: %s",
		uuid, e.Stage, e.LastCompletedStage, e.Err,
	)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
