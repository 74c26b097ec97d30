package pubsub

import "errors"

// Errors returned by the middleware. Use errors.Is() to check for them.
var (
	// ErrNotInitialised is returned when a resource is requested before Init.
	ErrNotInitialised = errors.New("pubsub: session not initialised")

	// ErrNoNode is returned when a resource is requested before CreateNode.
	ErrNoNode = errors.New("pubsub: node not created")

	// ErrInvalidNodeName is returned for node names that are empty or
	// contain characters other than letters, digits and underscores.
	ErrInvalidNodeName = errors.New("pubsub: invalid node name")

	// ErrInvalidHandles is returned when an executor is sized below one handle.
	ErrInvalidHandles = errors.New("pubsub: executor needs at least one handle")

	// ErrExecutorFull is returned when more handlers are added than handles exist.
	ErrExecutorFull = errors.New("pubsub: executor has no free handle")

	// ErrForeignSubscription is returned when a subscription from another
	// session is added to an executor.
	ErrForeignSubscription = errors.New("pubsub: subscription not created by this session")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pubsub: session closed")
)
