package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrInvalidChannel is returned when a channel is empty or malformed.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrInvalidSubscription is returned when a subscription is invalid.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when trying to remove a non-existent subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNilListener is returned when a nil listener is provided.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrNilEvent is returned when FireEvent is called without an event.
	ErrNilEvent = errors.New("event cannot be nil")
)

// ListenerError wraps an error returned by a listener with additional context.
type ListenerError struct {
	// SubscriptionID is the ID of the subscription whose listener failed.
	SubscriptionID string

	// Channel is the channel being fired.
	Channel Channel

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return "listener error on channel " + e.Channel.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}
