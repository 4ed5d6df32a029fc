package event

// Event is the object handed to listeners during a fire.
//
// The same Event may be fired on several channels in sequence (see
// Bus.FireEvent); its propagation and return state carry over between
// channels.
type Event struct {
	// Channel is the channel currently being fired.
	Channel Channel

	// Payload contains the event-specific data.
	Payload any

	stopped          bool
	defaultPrevented bool
	returned         bool
	returnValue      any
}

// NewEvent creates an event carrying payload.
func NewEvent(payload any) *Event {
	return &Event{Payload: payload}
}

// StopPropagation prevents lower priority listeners from receiving the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation has been stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// PreventDefault marks the default action of the event as prevented.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Return sets the result of the fire and stops propagation.
// Returning false additionally prevents the default action.
// Returning nil is a defined result distinct from not returning at all.
func (e *Event) Return(v any) {
	e.returned = true
	e.returnValue = v
	e.stopped = true
	if b, ok := v.(bool); ok && !b {
		e.defaultPrevented = true
	}
}

// Result returns the outcome of the event so far.
func (e *Event) Result() Result {
	if e.returned {
		return Result{Value: e.returnValue, Defined: true}
	}
	if e.defaultPrevented {
		return Result{Value: false, Defined: true}
	}
	return Result{}
}

// Result is the optional value produced by a fire.
type Result struct {
	// Value is the returned value. It is only meaningful when Defined is true.
	Value any

	// Defined is false when no listener returned a value.
	Defined bool
}

// Bool returns the result as a boolean and whether it holds one.
func (r Result) Bool() (bool, bool) {
	if !r.Defined {
		return false, false
	}
	b, ok := r.Value.(bool)
	return b, ok
}

// IsNil reports whether a listener explicitly returned nil.
func (r Result) IsNil() bool {
	return r.Defined && r.Value == nil
}
