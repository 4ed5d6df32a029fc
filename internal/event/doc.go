// Package event provides the synchronous event bus for Drafter.
//
// The bus is the dispatcher every editor component talks through: the
// command stack fires its phase events on it, renderers and overlays listen
// for change notifications, and behaviors hook into command phases.
//
// # Channels
//
// Channels are dot separated names:
//
//	stack.shape.move.preExecute  - command specific phase
//	stack.preExecute             - generic phase, fired for every command
//	elements.changed             - consolidated change notification
//
// # Ordering
//
// Delivery is strictly synchronous. Listeners run in descending priority
// order; listeners with equal priority run in registration order.
//
//	bus := event.NewBus()
//	bus.On("elements.changed", listener, event.WithPriority(1500))
//
// # Return values and cancellation
//
// A listener may stop propagation, prevent the default action, or return a
// value. Returning a value stops propagation to lower priority listeners,
// and the value becomes the Result of the fire:
//
//	bus.On("stack.shape.move.canExecute", event.ListenerFunc(func(e *event.Event) error {
//	    e.Return(false)
//	    return nil
//	}))
//
// Result distinguishes "no listener returned anything" from an explicit nil
// return, so callers can treat nil as a distinct answer.
//
// # Reentrancy
//
// Listeners may fire further events and subscribe or unsubscribe while a fire
// is in progress. Every fire iterates over a snapshot of the listeners that
// were registered when it started.
package event
