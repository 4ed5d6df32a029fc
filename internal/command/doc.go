// Package command implements the command stack: the transactional engine
// every diagram mutation passes through.
//
// A caller executes a named command with a context payload. The stack
// resolves the registered Handler, fires phase events on the event bus
// around the handler calls, records the resulting Action for undo/redo and,
// once the outermost call unwinds, publishes a single consolidated change
// notification.
//
// # Phases
//
// For a fresh execution the stack fires, in order:
//
//	preExecute   -> Handler.PreExecute  -> preExecuted
//	execute      -> Handler.Execute     -> executed      (atomic)
//	postExecute  -> Handler.PostExecute -> postExecuted
//
// Redo only runs the atomic part. Undo fires revert and reverted around
// Handler.Revert. Each phase is fired on the command specific channel
// ("stack.<command>.<phase>") and then on the generic channel
// ("stack.<phase>"); stopping propagation on the first suppresses the
// second.
//
// # Composition
//
// Listeners of the pre and post phases, and the PreExecute/PostExecute
// handler methods, may execute further commands. Actions created this way
// share the ID of the outermost action and undo/redo together as one step.
// The atomic region (a handler's own Execute or Revert and the execute,
// executed, revert and reverted phases) must not start new actions; doing so
// returns a *ReentrancyError.
//
// # Notifications
//
// When the outermost Execute, Undo or Redo returns, the stack fires
// "elements.changed" with the deduplicated set of elements reported by
// handlers, followed by "stack.changed" with the trigger.
//
// # Failures
//
// Errors from handlers and listeners abort the current top-level call and
// are returned to its caller. Nothing is rolled back: actions already
// recorded stay on the stack and the model keeps whatever changes were
// applied. The in-flight bookkeeping is reset so the stack stays usable, and
// no change notification is published for the failed call.
//
// A Stack is not safe for concurrent use. It is meant to be driven from the
// single goroutine that owns the editor.
package command
