package command

import (
	"errors"
	"fmt"
)

// Command stack errors.
var (
	// ErrCommandRequired indicates an empty command name.
	ErrCommandRequired = errors.New("command: command required")

	// ErrNoHandler indicates no handler is registered for a command.
	ErrNoHandler = errors.New("command: no command handler registered")

	// ErrHandlerExists indicates a second registration for the same command.
	ErrHandlerExists = errors.New("command: overriding handler for command")

	// ErrInvalidRegistration indicates a registration without command or handler.
	ErrInvalidRegistration = errors.New("command: command and handler required")

	// ErrIllegalInvocation indicates an attempt to start an action inside the
	// atomic region. Use errors.Is to match a *ReentrancyError.
	ErrIllegalInvocation = errors.New("command: illegal invocation in <execute> or <revert> phase")

	// ErrInvalidDecision indicates a canExecute listener returned something
	// other than a bool, nil or a Decision.
	ErrInvalidDecision = errors.New("command: invalid canExecute result")

	// ErrContextType indicates a handler received a context of the wrong type.
	ErrContextType = errors.New("command: unexpected context type")

	// ErrClearInFlight indicates Clear was called while a call is in flight.
	ErrClearInFlight = errors.New("command: cannot clear while executing")
)

// ReentrancyError reports an action started inside the atomic region.
type ReentrancyError struct {
	// Command is the command whose invocation was rejected.
	Command string

	// Active is the action whose Execute or Revert was running.
	Active string
}

// Error implements the error interface.
func (e *ReentrancyError) Error() string {
	msg := fmt.Sprintf("illegal invocation in <execute> or <revert> phase (action: %s)", e.Command)
	if e.Active != "" {
		msg += " while running " + e.Active
	}
	return msg
}

// Is allows errors.Is to match ErrIllegalInvocation.
func (e *ReentrancyError) Is(target error) bool {
	return target == ErrIllegalInvocation
}

// HandlerError wraps an error returned by a handler method.
type HandlerError struct {
	Command string
	Phase   Phase
	Err     error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("command %s: %s: %v", e.Command, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

func wrapHandlerError(command string, phase Phase, err error) error {
	if err == nil {
		return nil
	}
	var he *HandlerError
	if errors.As(err, &he) {
		return err
	}
	var re *ReentrancyError
	if errors.As(err, &re) {
		return err
	}
	return &HandlerError{Command: command, Phase: phase, Err: err}
}
