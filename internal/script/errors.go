package script

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when operating on a closed engine.
	ErrClosed = errors.New("script: engine is closed")

	// ErrNoScript is returned by Reload before anything was loaded.
	ErrNoScript = errors.New("script: nothing loaded")

	// ErrTimeout is returned when a script runs past its deadline.
	ErrTimeout = errors.New("script: execution timeout")
)

// ScriptError reports a failure inside Lua code.
type ScriptError struct {
	// Source is the script path or chunk name.
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
