package process

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running manager.
	ErrAlreadyRunning = errors.New("process already running")

	// ErrUnhealthy marks an exit forced by repeated health check failures.
	ErrUnhealthy = errors.New("process unhealthy")
)

// RecoverableError lets an exit cause opt out of a restart.
type RecoverableError interface {
	error
	IsRecoverable() bool
}

// IsRecoverable reports whether err should lead to a restart. Errors that do
// not implement RecoverableError are treated as recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	var re RecoverableError
	if errors.As(err, &re) {
		return re.IsRecoverable()
	}
	return true
}
