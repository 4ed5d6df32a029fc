package command

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel/trace"
)

// execution is the transient state of one top-level call.
// It only holds data while at least one action is in flight.
type execution struct {
	// actions is the call stack of in-flight actions. actions[0] is the base
	// action whose ID nested actions inherit.
	actions []*Action

	// dirty accumulates changed elements in report order.
	dirty []Element

	trigger Trigger
	stage   Stage

	// running is the action whose handler body currently runs in the
	// atomic region, for error reporting.
	running *Action

	// span bookkeeping; spans[0] belongs to the top-level call.
	spans []spanFrame
}

type spanFrame struct {
	ctx  context.Context
	span trace.Span
}

func (e *execution) inFlight() bool {
	return len(e.actions) > 0
}

func (e *execution) base() *Action {
	if len(e.actions) == 0 {
		return nil
	}
	return e.actions[0]
}

func (e *execution) spanContext() context.Context {
	if len(e.spans) == 0 {
		return context.Background()
	}
	return e.spans[len(e.spans)-1].ctx
}

// markDirty merges elements reported by a handler. Nil elements, including
// typed nil pointers, are skipped.
func (e *execution) markDirty(elements []Element) {
	for _, el := range elements {
		if !isNilElement(el) {
			e.dirty = append(e.dirty, el)
		}
	}
}

func isNilElement(el Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// takeDirty returns the deduplicated dirty set, most recent first, and
// clears it.
func (e *execution) takeDirty() []Element {
	seen := make(map[string]struct{}, len(e.dirty))
	result := make([]Element, 0, len(e.dirty))
	for i := len(e.dirty) - 1; i >= 0; i-- {
		el := e.dirty[i]
		id := el.ElementID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, el)
	}
	e.dirty = nil
	return result
}

// enter switches to stage s and returns a function restoring the previous stage.
func (e *execution) enter(s Stage) func() {
	prev := e.stage
	e.stage = s
	return func() {
		e.stage = prev
	}
}

func (e *execution) reset() {
	e.actions = nil
	e.dirty = nil
	e.trigger = TriggerNone
	e.stage = StageIdle
	e.running = nil
	e.spans = nil
}
