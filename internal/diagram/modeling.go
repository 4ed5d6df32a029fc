package diagram

import (
	"fmt"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/command/intercept"
)

// Option configures New.
type Option func(*options)

type options struct {
	rules     Rules
	noRules   bool
	behaviors bool
}

// WithRules replaces the default rules.
func WithRules(r Rules) Option {
	return func(o *options) {
		o.rules = r
	}
}

// WithoutRules skips the rule checks. Handler checks still apply.
func WithoutRules() Option {
	return func(o *options) {
		o.noRules = true
	}
}

// WithoutBehaviors skips the follow-up commands.
func WithoutBehaviors() Option {
	return func(o *options) {
		o.behaviors = false
	}
}

// Modeling edits a canvas through the command stack.
type Modeling struct {
	stack       *command.Stack
	canvas      *Canvas
	interceptor *intercept.Interceptor
}

// New registers the diagram handlers on s and installs behaviors and rules.
func New(s *command.Stack, canvas *Canvas, opts ...Option) (*Modeling, error) {
	o := options{rules: DefaultRules(), behaviors: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := RegisterHandlers(s, canvas); err != nil {
		return nil, err
	}

	m := &Modeling{
		stack:       s,
		canvas:      canvas,
		interceptor: intercept.New(s.Bus()),
	}
	if o.behaviors {
		if err := installBehaviors(m.interceptor, s, canvas); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("install behaviors: %w", err)
		}
	}
	if !o.noRules {
		if err := o.rules.install(m.interceptor, canvas); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("install rules: %w", err)
		}
	}
	return m, nil
}

// Close removes the behaviors and rules. Handlers stay registered.
func (m *Modeling) Close() error {
	return m.interceptor.Close()
}

// Canvas returns the edited canvas.
func (m *Modeling) Canvas() *Canvas {
	return m.canvas
}

// Stack returns the command stack.
func (m *Modeling) Stack() *command.Stack {
	return m.stack
}

// run executes cmd if the stack allows it. An ignored command is skipped
// without error.
func (m *Modeling) run(cmd string, ctx command.Context) error {
	d, err := m.stack.CanExecute(cmd, ctx)
	if err != nil {
		return err
	}
	switch d {
	case command.Ignore:
		return nil
	case command.Allow:
		return m.stack.Execute(cmd, ctx)
	default:
		return fmt.Errorf("%w: %s", ErrNotAllowed, cmd)
	}
}

// CreateShape adds a shape with bounds and an optional label.
func (m *Modeling) CreateShape(typ string, bounds Bounds, text string) (*Shape, error) {
	shape := &Shape{Type: typ, Bounds: bounds}
	if err := m.run(CmdShapeCreate, &CreateShapeContext{Shape: shape, Text: text}); err != nil {
		return nil, err
	}
	return shape, nil
}

// DeleteShape removes a shape together with its connections and label.
func (m *Modeling) DeleteShape(id string) error {
	return m.run(CmdShapeDelete, &DeleteShapeContext{ShapeID: id})
}

// MoveShape translates a shape by delta.
func (m *Modeling) MoveShape(id string, delta Point) error {
	return m.run(CmdShapeMove, &MoveShapeContext{ShapeID: id, Delta: delta})
}

// ResizeShape sets the bounds of a shape.
func (m *Modeling) ResizeShape(id string, bounds Bounds) error {
	return m.run(CmdShapeResize, &ResizeShapeContext{ShapeID: id, Bounds: bounds})
}

// Connect links source to target.
func (m *Modeling) Connect(source, target, text string) (*Connection, error) {
	conn := &Connection{SourceID: source, TargetID: target}
	if err := m.run(CmdConnectionCreate, &CreateConnectionContext{Connection: conn, Text: text}); err != nil {
		return nil, err
	}
	return conn, nil
}

// DeleteConnection removes a connection and its label.
func (m *Modeling) DeleteConnection(id string) error {
	return m.run(CmdConnectionDelete, &DeleteConnectionContext{ConnectionID: id})
}

// Reconnect changes the ends of a connection. Empty ends are kept.
func (m *Modeling) Reconnect(id, source, target string) error {
	return m.run(CmdConnectionReconnect, &ReconnectContext{ConnectionID: id, SourceID: source, TargetID: target})
}

// UpdateLabel sets the label text of a shape or connection.
func (m *Modeling) UpdateLabel(id, text string) error {
	return m.run(CmdUpdateLabel, &UpdateLabelContext{ElementID: id, Text: text})
}

// MoveLabel translates a label by delta.
func (m *Modeling) MoveLabel(id string, delta Point) error {
	return m.run(CmdLabelMove, &MoveLabelContext{LabelID: id, Delta: delta})
}
