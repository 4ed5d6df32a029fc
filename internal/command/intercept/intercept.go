// Package intercept hooks into command stack phases without spelling out
// channel names.
//
// An Interceptor subscribes callbacks to "stack.<command>.<phase>" for each
// named command, or to "stack.<phase>" when no command is given:
//
//	ic := intercept.New(bus)
//	ic.PostExecute([]string{"shape.move"}, intercept.Unwrap(func(ctx command.Context, inv *intercept.Invocation) error {
//		return stack.Execute("connection.layout", ...)
//	}))
package intercept

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/event"
)

var (
	// ErrInvalidPhase indicates an unknown phase.
	ErrInvalidPhase = errors.New("intercept: invalid phase")

	// ErrNilFunc indicates a nil callback.
	ErrNilFunc = errors.New("intercept: callback required")
)

// Func handles one phase event.
type Func func(inv *Invocation) error

// ContextFunc handles one phase event given the command context directly.
type ContextFunc func(ctx command.Context, inv *Invocation) error

// Unwrap adapts fn to a Func by passing the action context as first argument.
func Unwrap(fn ContextFunc) Func {
	return func(inv *Invocation) error {
		return fn(inv.Context(), inv)
	}
}

// Typed adapts fn to a Func that receives the context as T.
// A context of another type fails with command.ErrContextType.
func Typed[T any](fn func(ctx T, inv *Invocation) error) Func {
	return func(inv *Invocation) error {
		ctx, err := command.ContextAs[T](inv.Context())
		if err != nil {
			return err
		}
		return fn(ctx, inv)
	}
}

// Invocation is the view of a phase event passed to callbacks.
type Invocation struct {
	Action command.Action
	ev     *event.Event
}

// Command returns the command name.
func (i *Invocation) Command() string { return i.Action.Command }

// Context returns the command context.
func (i *Invocation) Context() command.Context { return i.Action.Context }

// Channel returns the channel the event is being delivered on.
func (i *Invocation) Channel() event.Channel { return i.ev.Channel }

// StopPropagation skips the remaining listeners of this phase.
func (i *Invocation) StopPropagation() { i.ev.StopPropagation() }

// PreventDefault marks the event as prevented.
func (i *Invocation) PreventDefault() { i.ev.PreventDefault() }

// Return sets the phase result and stops propagation.
// In the canExecute phase the value decides the command.
func (i *Invocation) Return(v any) { i.ev.Return(v) }

// Allow answers a canExecute phase with command.Allow.
func (i *Invocation) Allow() { i.ev.Return(true) }

// Deny answers a canExecute phase with command.Deny.
func (i *Invocation) Deny() { i.ev.Return(false) }

// Ignore answers a canExecute phase with command.Ignore.
func (i *Invocation) Ignore() { i.ev.Return(nil) }

// Option configures a registration.
type Option func(*options)

type options struct {
	priority event.Priority
}

// WithPriority sets the listener priority. Defaults to event.DefaultPriority.
func WithPriority(p event.Priority) Option {
	return func(o *options) {
		o.priority = p
	}
}

// Registration is the set of subscriptions made by one On call.
type Registration struct {
	bus  *event.Bus
	subs []event.Subscription
}

// Channels returns the channels the registration listens on.
func (r *Registration) Channels() []event.Channel {
	chs := make([]event.Channel, len(r.subs))
	for i, sub := range r.subs {
		chs[i] = sub.Channel()
	}
	return chs
}

// Remove unsubscribes every channel of the registration.
// Removing twice is a no-op.
func (r *Registration) Remove() error {
	var errs []error
	for _, sub := range r.subs {
		if err := r.bus.Off(sub); err != nil && !errors.Is(err, event.ErrSubscriptionNotFound) {
			errs = append(errs, err)
		}
	}
	r.subs = nil
	return errors.Join(errs...)
}

// Interceptor registers phase callbacks on a bus.
type Interceptor struct {
	bus *event.Bus

	mu   sync.Mutex
	regs []*Registration
}

// New creates an interceptor for bus.
func New(bus *event.Bus) *Interceptor {
	return &Interceptor{bus: bus}
}

// On subscribes fn to phase of each of commands, or of every command if
// commands is empty.
func (i *Interceptor) On(commands []string, phase command.Phase, fn Func, opts ...Option) (*Registration, error) {
	if !phase.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	o := options{priority: event.DefaultPriority}
	for _, opt := range opts {
		opt(&o)
	}

	channels := make([]event.Channel, 0, len(commands))
	for _, cmd := range commands {
		channels = append(channels, command.PhaseChannel(cmd, phase))
	}
	if len(channels) == 0 {
		channels = append(channels, command.PhaseChannel("", phase))
	}

	listener := event.ListenerFunc(func(e *event.Event) error {
		action, ok := e.Payload.(command.Action)
		if !ok {
			return nil
		}
		return fn(&Invocation{Action: action, ev: e})
	})

	reg := &Registration{bus: i.bus}
	for _, ch := range channels {
		sub, err := i.bus.On(ch, listener, event.WithPriority(o.priority))
		if err != nil {
			_ = reg.Remove()
			return nil, fmt.Errorf("subscribe %s: %w", ch, err)
		}
		reg.subs = append(reg.subs, sub)
	}

	i.mu.Lock()
	i.regs = append(i.regs, reg)
	i.mu.Unlock()
	return reg, nil
}

// Close removes every registration made through i.
func (i *Interceptor) Close() error {
	i.mu.Lock()
	regs := i.regs
	i.regs = nil
	i.mu.Unlock()

	var errs []error
	for _, reg := range regs {
		if err := reg.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CanExecute registers fn for the canExecute phase.
func (i *Interceptor) CanExecute(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhaseCanExecute, fn, opts...)
}

// PreExecute registers fn for the preExecute phase.
func (i *Interceptor) PreExecute(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhasePreExecute, fn, opts...)
}

// PreExecuted registers fn for the preExecuted phase.
func (i *Interceptor) PreExecuted(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhasePreExecuted, fn, opts...)
}

// Execute registers fn for the execute phase.
func (i *Interceptor) Execute(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhaseExecute, fn, opts...)
}

// Executed registers fn for the executed phase.
func (i *Interceptor) Executed(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhaseExecuted, fn, opts...)
}

// PostExecute registers fn for the postExecute phase.
func (i *Interceptor) PostExecute(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhasePostExecute, fn, opts...)
}

// PostExecuted registers fn for the postExecuted phase.
func (i *Interceptor) PostExecuted(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhasePostExecuted, fn, opts...)
}

// Revert registers fn for the revert phase.
func (i *Interceptor) Revert(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhaseRevert, fn, opts...)
}

// Reverted registers fn for the reverted phase.
func (i *Interceptor) Reverted(commands []string, fn Func, opts ...Option) (*Registration, error) {
	return i.On(commands, command.PhaseReverted, fn, opts...)
}
