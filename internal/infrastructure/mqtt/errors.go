package mqtt

import "errors"

// Errors returned by the client. Use errors.Is() to check for them.
var (
	// ErrNotConnected is returned when the broker session is down.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish is not acknowledged.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscribe is not acknowledged.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe is not acknowledged.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned for empty or unpublishable topics.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")
)
