// Package render draws a diagram canvas on a terminal screen.
//
// A Renderer subscribes to elements.changed and redraws once per outermost
// command stack call.
package render

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/event"
	"github.com/dshills/drafter/internal/log"
)

// ErrAttached is returned when attaching a renderer twice.
var ErrAttached = errors.New("render: already attached")

// Renderer draws a canvas onto a tcell screen.
type Renderer struct {
	mu sync.Mutex

	screen tcell.Screen
	canvas *diagram.Canvas
	theme  Theme
	logger *log.Logger

	// origin is the canvas point drawn at the top-left cell.
	origin   diagram.Point
	selected string
	status   string

	bus *event.Bus
	sub event.Subscription

	redraws   int
	lastDirty []string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the drawing styles.
func WithTheme(t Theme) Option {
	return func(r *Renderer) {
		r.theme = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a renderer for canvas on screen. The screen must already be
// initialized.
func New(screen tcell.Screen, canvas *diagram.Canvas, opts ...Option) *Renderer {
	r := &Renderer{
		screen: screen,
		canvas: canvas,
		theme:  DefaultTheme(),
		logger: log.NullLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("render")
	return r
}

// Attach subscribes the renderer to element changes on bus.
func (r *Renderer) Attach(bus *event.Bus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		return ErrAttached
	}
	sub, err := bus.OnFunc(command.ElementsChangedChannel, r.handleChanged, event.WithPriority(event.PriorityLow))
	if err != nil {
		return err
	}
	r.bus = bus
	r.sub = sub
	return nil
}

// Detach removes the subscription made by Attach.
func (r *Renderer) Detach() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub == nil {
		return nil
	}
	err := r.bus.Off(r.sub)
	r.bus, r.sub = nil, nil
	return err
}

func (r *Renderer) handleChanged(e *event.Event) error {
	changed, ok := e.Payload.(command.ElementsChanged)
	if !ok {
		return nil
	}

	ids := make([]string, len(changed.Elements))
	for i, el := range changed.Elements {
		ids[i] = el.ElementID()
	}

	r.mu.Lock()
	r.lastDirty = ids
	if r.selected != "" && !r.canvas.Has(r.selected) {
		r.selected = ""
	}
	r.mu.Unlock()

	r.logger.Debug("redraw after %s: %d dirty", changed.Trigger, len(ids))
	r.Draw()
	return nil
}

// Draw redraws the whole canvas and shows the result.
func (r *Renderer) Draw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Fill(' ', r.theme.Background)
	for _, c := range r.canvas.Connections() {
		r.drawConnection(c)
	}
	for _, s := range r.canvas.Shapes() {
		style := r.theme.Shape
		if s.ID == r.selected {
			style = r.theme.Selected
		}
		r.drawShape(s, style)
	}
	for _, l := range r.canvas.Labels() {
		r.drawText(r.toScreen(l.Position), l.Text, r.theme.Label)
	}
	r.drawStatus()

	r.screen.Show()
	r.redraws++
}

// Select highlights the shape with the given ID. An empty ID clears the
// selection.
func (r *Renderer) Select(id string) {
	r.mu.Lock()
	r.selected = id
	r.mu.Unlock()
}

// Selected returns the highlighted shape ID.
func (r *Renderer) Selected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// SetStatus sets the text of the bottom line.
func (r *Renderer) SetStatus(text string) {
	r.mu.Lock()
	r.status = text
	r.mu.Unlock()
}

// Scroll moves the visible area by d.
func (r *Renderer) Scroll(d diagram.Point) {
	r.mu.Lock()
	r.origin = r.origin.Add(d)
	r.mu.Unlock()
}

// Origin returns the canvas point drawn at the top-left cell.
func (r *Renderer) Origin() diagram.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.origin
}

// Redraws returns how many times the canvas was drawn.
func (r *Renderer) Redraws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redraws
}

// LastDirty returns the element IDs of the most recent change notification.
func (r *Renderer) LastDirty() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lastDirty...)
}
