package node

import (
	"errors"
	"fmt"
)

// Domain errors for the node core.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownStrategy is returned when a bridge strategy name is not recognised.
	ErrUnknownStrategy = errors.New("node: unknown bridge strategy")

	// ErrUnknownOverflow is returned when a queue overflow policy name is not recognised.
	ErrUnknownOverflow = errors.New("node: unknown queue overflow policy")

	// ErrInvalidCapacity is returned when a queued bridge is sized below 1.
	ErrInvalidCapacity = errors.New("node: queue capacity must be at least 1")

	// ErrUnknownEncoding is returned when a payload codec name is not recognised.
	ErrUnknownEncoding = errors.New("node: unknown payload encoding")

	// ErrInvalidPayload is returned when an inbound payload is not a single byte value.
	ErrInvalidPayload = errors.New("node: invalid payload")

	// ErrPublishFailed wraps a soft publish failure.
	ErrPublishFailed = errors.New("node: publish failed")

	// ErrOutputFailed wraps a failure to drive the output line.
	ErrOutputFailed = errors.New("node: output line write failed")

	// ErrMissingDependency is returned by New when a required option is nil.
	ErrMissingDependency = errors.New("node: missing dependency")
)

// Setup steps, in the order Setup performs them.
const (
	StepContext      = "context"
	StepNode         = "node"
	StepPublisher    = "publisher"
	StepSubscription = "subscription"
	StepExecutor     = "executor"
	StepRegister     = "register"
)

// SetupError reports which setup step failed.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("node setup failed at %s: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
