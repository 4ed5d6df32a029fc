package command

import "fmt"

// Handler implements one command.
//
// Execute and Revert must be exact inverses of each other. They run inside
// the atomic region and must not execute other commands. Both return the
// elements they changed.
type Handler interface {
	Execute(ctx Context) ([]Element, error)
	Revert(ctx Context) ([]Element, error)
}

// CanExecuter is implemented by handlers that validate their context.
type CanExecuter interface {
	CanExecute(ctx Context) Decision
}

// PreExecuter is implemented by handlers that compose other commands before
// their own Execute. It is not called on redo.
type PreExecuter interface {
	PreExecute(ctx Context) error
}

// PostExecuter is implemented by handlers that compose other commands after
// their own Execute. It is not called on redo.
type PostExecuter interface {
	PostExecute(ctx Context) error
}

// HandlerFactory builds a handler bound to a stack.
type HandlerFactory func(s *Stack) Handler

// HandlerFuncs adapts a pair of functions to the Handler interface.
type HandlerFuncs struct {
	ExecuteFunc func(ctx Context) ([]Element, error)
	RevertFunc  func(ctx Context) ([]Element, error)
}

// Execute implements Handler.
func (h HandlerFuncs) Execute(ctx Context) ([]Element, error) {
	if h.ExecuteFunc == nil {
		return nil, nil
	}
	return h.ExecuteFunc(ctx)
}

// Revert implements Handler.
func (h HandlerFuncs) Revert(ctx Context) ([]Element, error) {
	if h.RevertFunc == nil {
		return nil, nil
	}
	return h.RevertFunc(ctx)
}

// Decision is the answer to CanExecute.
type Decision int

const (
	// Deny forbids the command.
	Deny Decision = iota
	// Allow permits the command.
	Allow
	// Ignore means the command is neither allowed nor forbidden; callers
	// should silently skip it. It is never the same as Deny.
	Ignore
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Deny:
		return "deny"
	case Allow:
		return "allow"
	case Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Allowed reports whether d permits the command.
func (d Decision) Allowed() bool {
	return d == Allow
}

// DecisionOf converts a listener return value into a Decision.
// true, false and nil map to Allow, Deny and Ignore.
func DecisionOf(v any) (Decision, error) {
	switch val := v.(type) {
	case nil:
		return Ignore, nil
	case bool:
		if val {
			return Allow, nil
		}
		return Deny, nil
	case Decision:
		return val, nil
	default:
		return Deny, fmt.Errorf("%w: %T", ErrInvalidDecision, v)
	}
}
