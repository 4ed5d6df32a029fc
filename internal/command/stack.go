package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dshills/drafter/internal/event"
	"github.com/dshills/drafter/internal/log"
	"github.com/dshills/drafter/internal/tracing"
)

// Stack executes commands and keeps the undo/redo history.
type Stack struct {
	bus      *event.Bus
	handlers *Registry
	logger   *log.Logger
	tracer   trace.Tracer

	// stack holds the full history; stack[:stackIdx+1] is applied,
	// the rest can be redone.
	stack    []*Action
	stackIdx int
	uid      int

	execution execution
}

// Option configures a Stack.
type Option func(*Stack)

// WithLogger sets the logger used by the stack.
func WithLogger(l *log.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used to record spans for each call.
func WithTracer(t trace.Tracer) Option {
	return func(s *Stack) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates a command stack firing its events on bus.
// A nil bus gets a private one.
func New(bus *event.Bus, opts ...Option) *Stack {
	if bus == nil {
		bus = event.NewBus()
	}
	s := &Stack{
		bus:      bus,
		handlers: NewRegistry(),
		logger:   log.NullLogger,
		tracer:   noop.NewTracerProvider().Tracer(tracing.TracerName),
		stackIdx: -1,
		uid:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("stack")
	return s
}

// Bus returns the event bus the stack fires on.
func (s *Stack) Bus() *event.Bus {
	return s.bus
}

// Handlers returns the handler registry.
func (s *Stack) Handlers() *Registry {
	return s.handlers
}

// Register registers the handler for command.
func (s *Stack) Register(command string, h Handler) error {
	return s.handlers.Register(command, h)
}

// RegisterHandler builds a handler with factory and registers it for command.
func (s *Stack) RegisterHandler(command string, factory HandlerFactory) error {
	if command == "" || factory == nil {
		return ErrInvalidRegistration
	}
	h := factory(s)
	if h == nil {
		return ErrInvalidRegistration
	}
	return s.Register(command, h)
}

// Execute runs command with ctx and records it for undo.
//
// Called from a pre or post phase of another command, the new action joins
// that command's undo step.
func (s *Stack) Execute(command string, ctx Context) (err error) {
	if command == "" {
		return ErrCommandRequired
	}

	action := &Action{Command: command, Context: ctx}
	if err := s.pushAction(action, TriggerExecute); err != nil {
		return err
	}
	defer s.finish(&err)

	return s.internalExecute(action, false)
}

// CanExecute asks listeners and then the handler whether command may run.
//
// The first listener of the canExecute phase that returns a value decides.
// Only when no listener does is the handler's CanExecute consulted; a
// missing handler or a handler without CanExecute yields Deny.
func (s *Stack) CanExecute(command string, ctx Context) (Decision, error) {
	if command == "" {
		return Deny, ErrCommandRequired
	}

	action := &Action{Command: command, Context: ctx}
	res, err := s.fire(action, PhaseCanExecute)
	if err != nil {
		return Deny, err
	}
	if res.Defined {
		return DecisionOf(res.Value)
	}

	h := s.handlers.Get(command)
	if h == nil {
		return Deny, nil
	}
	if ce, ok := h.(CanExecuter); ok {
		return ce.CanExecute(ctx), nil
	}
	return Deny, nil
}

// Undo reverts the last step. A step is every action sharing the ID of the
// action at the cursor. Undo with nothing to undo is a no-op.
func (s *Stack) Undo() (err error) {
	action := s.undoAction()
	if action == nil {
		return s.checkAtomic("undo")
	}
	if err := s.pushAction(action, TriggerUndo); err != nil {
		return err
	}
	defer s.finish(&err)

	for {
		if err := s.internalUndo(action); err != nil {
			return err
		}
		next := s.undoAction()
		if next == nil || next.ID != action.ID {
			return nil
		}
		action = next
	}
}

// Redo re-applies the next step. Redo with nothing to redo is a no-op.
func (s *Stack) Redo() (err error) {
	action := s.redoAction()
	if action == nil {
		return s.checkAtomic("redo")
	}
	if err := s.pushAction(action, TriggerRedo); err != nil {
		return err
	}
	defer s.finish(&err)

	for {
		if err := s.internalExecute(action, true); err != nil {
			return err
		}
		next := s.redoAction()
		if next == nil || next.ID != action.ID {
			return nil
		}
		action = next
	}
}

// CanUndo reports whether there is an action to undo.
func (s *Stack) CanUndo() bool {
	return s.undoAction() != nil
}

// CanRedo reports whether there is an action to redo.
func (s *Stack) CanRedo() bool {
	return s.redoAction() != nil
}

// Clear drops the whole history. With emit set, listeners of
// ChangedChannel are notified with TriggerClear.
func (s *Stack) Clear(emit bool) error {
	if s.execution.inFlight() {
		return ErrClearInFlight
	}

	clear(s.stack)
	s.stack = nil
	s.stackIdx = -1

	if !emit {
		return nil
	}
	_, err := s.bus.Fire(ChangedChannel, Changed{Trigger: TriggerClear})
	return err
}

// Index returns the cursor: the index of the last applied action, or -1.
func (s *Stack) Index() int {
	return s.stackIdx
}

// Len returns the number of recorded actions, including redoable ones.
func (s *Stack) Len() int {
	return len(s.stack)
}

// Actions returns a copy of the recorded history.
func (s *Stack) Actions() []Action {
	result := make([]Action, len(s.stack))
	for i, a := range s.stack {
		result[i] = *a
	}
	return result
}

// CurrentStage returns the stage of the call in flight, or StageIdle.
func (s *Stack) CurrentStage() Stage {
	return s.execution.stage
}

// InFlight reports whether a call is currently executing.
func (s *Stack) InFlight() bool {
	return s.execution.inFlight()
}

func (s *Stack) undoAction() *Action {
	if s.stackIdx < 0 || s.stackIdx >= len(s.stack) {
		return nil
	}
	return s.stack[s.stackIdx]
}

func (s *Stack) redoAction() *Action {
	idx := s.stackIdx + 1
	if idx < 0 || idx >= len(s.stack) {
		return nil
	}
	return s.stack[idx]
}

func (s *Stack) internalExecute(action *Action, redo bool) (err error) {
	handler := s.handlers.Get(action.Command)
	if handler == nil {
		return fmt.Errorf("%w <%s>", ErrNoHandler, action.Command)
	}

	if err := s.pushAction(action, TriggerNone); err != nil {
		return err
	}
	defer s.finish(&err)

	op := "execute"
	if redo {
		op = "redo"
	}
	end := s.startActionSpan(action, op)
	defer func() { end(err) }()

	if !redo {
		err := s.inStage(StagePre, func() error {
			if _, err := s.fire(action, PhasePreExecute); err != nil {
				return err
			}
			if pre, ok := handler.(PreExecuter); ok {
				if err := pre.PreExecute(action.Context); err != nil {
					return wrapHandlerError(action.Command, PhasePreExecute, err)
				}
			}
			_, err := s.fire(action, PhasePreExecuted)
			return err
		})
		if err != nil {
			return err
		}
	}

	err = s.atomic(action, func() error {
		if _, err := s.fire(action, PhaseExecute); err != nil {
			return err
		}
		elements, err := handler.Execute(action.Context)
		if err != nil {
			return wrapHandlerError(action.Command, PhaseExecute, err)
		}
		s.execution.markDirty(elements)
		s.executedAction(action, redo)
		_, err = s.fire(action, PhaseExecuted)
		return err
	})
	if err != nil {
		return err
	}

	if redo {
		return nil
	}

	return s.inStage(StagePost, func() error {
		if _, err := s.fire(action, PhasePostExecute); err != nil {
			return err
		}
		if post, ok := handler.(PostExecuter); ok {
			if err := post.PostExecute(action.Context); err != nil {
				return wrapHandlerError(action.Command, PhasePostExecute, err)
			}
		}
		_, err := s.fire(action, PhasePostExecuted)
		return err
	})
}

func (s *Stack) internalUndo(action *Action) (err error) {
	handler := s.handlers.Get(action.Command)
	if handler == nil {
		return fmt.Errorf("%w <%s>", ErrNoHandler, action.Command)
	}

	end := s.startActionSpan(action, "revert")
	defer func() { end(err) }()

	return s.atomic(action, func() error {
		if _, err := s.fire(action, PhaseRevert); err != nil {
			return err
		}
		elements, err := handler.Revert(action.Context)
		if err != nil {
			return wrapHandlerError(action.Command, PhaseRevert, err)
		}
		s.execution.markDirty(elements)
		s.stackIdx--
		_, err = s.fire(action, PhaseReverted)
		return err
	})
}

// executedAction advances the cursor. A fresh execution also discards the
// redo history beyond the cursor and stores the action there.
func (s *Stack) executedAction(action *Action, redo bool) {
	s.stackIdx++
	if redo {
		return
	}
	clear(s.stack[s.stackIdx:])
	s.stack = append(s.stack[:s.stackIdx], action)
}

// checkAtomic rejects any stack operation issued from a handler body.
func (s *Stack) checkAtomic(command string) error {
	e := &s.execution
	if e.stage != StageAtomic {
		return nil
	}
	re := &ReentrancyError{Command: command}
	if e.running != nil {
		re.Active = e.running.String()
	}
	return re
}

// pushAction puts action on the in-flight call stack and assigns its ID.
func (s *Stack) pushAction(action *Action, trigger Trigger) error {
	e := &s.execution

	if err := s.checkAtomic(action.Command); err != nil {
		return err
	}

	if !e.inFlight() {
		s.startCall(trigger)
	}
	if trigger != TriggerNone {
		e.trigger = trigger
	}
	if action.ID == 0 {
		if base := e.base(); base != nil {
			action.ID = base.ID
		} else {
			action.ID = s.uid
			s.uid++
		}
	}
	e.actions = append(e.actions, action)
	return nil
}

// popAction removes the top in-flight action. Popping the outermost one
// publishes the change notifications, or discards the transient state if
// the call failed.
func (s *Stack) popAction(err error) error {
	e := &s.execution
	e.actions = e.actions[:len(e.actions)-1]
	if e.inFlight() {
		return err
	}

	trigger := e.trigger
	if err != nil {
		s.endCall(err)
		s.logger.Warn("%s failed: %v", trigger, err)
		e.reset()
		return err
	}

	elements := e.takeDirty()
	s.endCall(nil)
	e.trigger = TriggerNone
	e.spans = nil

	s.logger.Debug("%s completed, %d elements changed", trigger, len(elements))
	return s.flush(trigger, elements)
}

// finish is deferred by every method that pushed an action.
func (s *Stack) finish(errp *error) {
	if r := recover(); r != nil {
		s.endCall(fmt.Errorf("panic: %v", r))
		s.execution.reset()
		panic(r)
	}
	*errp = s.popAction(*errp)
}

func (s *Stack) flush(trigger Trigger, elements []Element) error {
	defer s.execution.enter(StageFlush)()

	if _, err := s.bus.Fire(ElementsChangedChannel, ElementsChanged{Elements: elements, Trigger: trigger}); err != nil {
		return err
	}
	_, err := s.bus.Fire(ChangedChannel, Changed{Trigger: trigger})
	return err
}

// fire delivers phase on the command specific channel and then on the
// generic one, sharing one event so a stop on the first skips the second.
func (s *Stack) fire(action *Action, phase Phase) (event.Result, error) {
	e := event.NewEvent(*action)
	res := event.Result{}
	for _, ch := range []event.Channel{PhaseChannel(action.Command, phase), PhaseChannel("", phase)} {
		r, err := s.bus.FireEvent(ch, e)
		if err != nil {
			return r, err
		}
		res = r
		if e.Stopped() {
			break
		}
	}
	return res, nil
}

func (s *Stack) inStage(stage Stage, fn func() error) error {
	defer s.execution.enter(stage)()
	return fn()
}

// atomic runs fn inside the atomic region on behalf of action.
func (s *Stack) atomic(action *Action, fn func() error) error {
	e := &s.execution
	prev := e.running
	e.running = action
	defer func() { e.running = prev }()
	return s.inStage(StageAtomic, fn)
}

func (s *Stack) startCall(trigger Trigger) {
	ctx, span := s.tracer.Start(context.Background(), "stack."+string(trigger),
		trace.WithAttributes(attribute.String(tracing.AttrTrigger, string(trigger))))
	s.execution.spans = []spanFrame{{ctx: ctx, span: span}}
}

// endCall ends every span still open for the current call.
func (s *Stack) endCall(err error) {
	e := &s.execution
	for i := len(e.spans) - 1; i >= 0; i-- {
		finishSpan(e.spans[i].span, err)
	}
	e.spans = nil
}

func (s *Stack) startActionSpan(action *Action, op string) func(error) {
	e := &s.execution
	ctx, span := s.tracer.Start(e.spanContext(), tracing.SpanPrefixCommand+action.Command,
		trace.WithAttributes(
			attribute.String(tracing.AttrCommand, action.Command),
			attribute.Int(tracing.AttrActionID, action.ID),
			attribute.String(tracing.AttrOperation, op),
		))
	e.spans = append(e.spans, spanFrame{ctx: ctx, span: span})

	return func(err error) {
		if n := len(e.spans); n > 1 {
			e.spans = e.spans[:n-1]
		}
		finishSpan(span, err)
	}
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
