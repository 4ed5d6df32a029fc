package event

// Priority determines listener execution order.
// Higher values execute first.
type Priority int

const (
	// PriorityLowest runs after every other listener.
	PriorityLowest Priority = 0

	// PriorityLow is for observers such as logging and metrics.
	PriorityLow Priority = 500

	// DefaultPriority is used when no priority is given.
	DefaultPriority Priority = 1000

	// PriorityHigh is for rules and behaviors that must see events first.
	PriorityHigh Priority = 1500

	// PriorityHighest runs before every other listener.
	PriorityHighest Priority = 10000
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityHighest:
		return "highest"
	case p >= PriorityHigh:
		return "high"
	case p >= DefaultPriority:
		return "default"
	case p >= PriorityLow:
		return "low"
	default:
		return "lowest"
	}
}

// Listener handles events fired on a channel.
type Listener interface {
	// Handle processes an event. A returned error aborts the fire and is
	// reported to the code that fired the event.
	Handle(e *Event) error
}

// ListenerFunc is a function adapter for Listener.
type ListenerFunc func(e *Event) error

// Handle implements the Listener interface.
func (f ListenerFunc) Handle(e *Event) error {
	return f(e)
}

// FilterFunc is a predicate for filtering events.
// Return true to deliver the event, false to skip the listener.
type FilterFunc func(e *Event) bool

// Stats contains event bus statistics.
type Stats struct {
	// EventsFired is the total number of fires, including those without listeners.
	EventsFired uint64

	// ListenersInvoked is the total number of listener invocations.
	ListenersInvoked uint64

	// ListenerErrors is the number of listeners that returned errors.
	ListenerErrors uint64

	// Subscriptions is the current number of registered subscriptions.
	Subscriptions int
}
