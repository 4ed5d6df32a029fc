package command

import "fmt"

// Context is the payload a command is executed with.
// Each command family defines its own concrete type; handlers recover it
// with ContextAs. Handlers may record revert data on a pointer context.
type Context any

// ContextAs converts ctx to the concrete context type T.
func ContextAs[T any](ctx Context) (T, error) {
	v, ok := ctx.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, got %T", ErrContextType, zero, ctx)
	}
	return v, nil
}

// Element is a diagram element a handler reports as changed.
// Change notifications deduplicate elements by ElementID.
type Element interface {
	ElementID() string
}

// Action is one recorded command invocation.
// Actions sharing an ID form one undo/redo step.
type Action struct {
	Command string
	Context Context
	ID      int
}

// String returns a short description of the action.
func (a Action) String() string {
	return fmt.Sprintf("%s#%d", a.Command, a.ID)
}

// Trigger names the outermost operation that caused a change notification.
type Trigger string

const (
	TriggerNone    Trigger = ""
	TriggerExecute Trigger = "execute"
	TriggerUndo    Trigger = "undo"
	TriggerRedo    Trigger = "redo"
	TriggerClear   Trigger = "clear"
)

// String returns the trigger name.
func (t Trigger) String() string {
	if t == TriggerNone {
		return "none"
	}
	return string(t)
}
