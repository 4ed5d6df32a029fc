package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/drafter/internal/diagram"
)

const helpLine = "n new  arrows move  +/- size  tab select  c connect  d delete  u undo  r redo  l reload  q quit"

// editor maps keys to modeling operations on the selected shape.
type editor struct {
	app *Application

	// connectFrom is the source shape while a connection is being drawn.
	connectFrom string
	created     int
	message     string
}

func newEditor(app *Application) *editor {
	return &editor{app: app, message: helpLine}
}

func (e *editor) handleKey(ev *tcell.EventKey) error {
	step := e.app.cfg.Canvas.Step

	var err error
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return ErrQuit
	case tcell.KeyEscape:
		e.connectFrom = ""
		e.message = helpLine
	case tcell.KeyUp:
		err = e.move(diagram.Point{Y: -step})
	case tcell.KeyDown:
		err = e.move(diagram.Point{Y: step})
	case tcell.KeyLeft:
		err = e.move(diagram.Point{X: -step})
	case tcell.KeyRight:
		err = e.move(diagram.Point{X: step})
	case tcell.KeyTab:
		e.selectNext(1)
	case tcell.KeyBacktab:
		e.selectNext(-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return ErrQuit
		case 'n':
			err = e.create()
		case '+', '=':
			err = e.resize(step)
		case '-':
			err = e.resize(-step)
		case 'c':
			err = e.connect()
		case 'd':
			err = e.remove()
		case 'u':
			err = e.app.stack.Undo()
		case 'r':
			err = e.app.stack.Redo()
		case 'l':
			err = e.reloadAll()
		}
	}

	if err != nil {
		e.report(err)
	}
	e.refresh()
	return nil
}

func (e *editor) report(err error) {
	switch {
	case errors.Is(err, diagram.ErrNotAllowed):
		e.message = "not allowed"
	case errors.Is(err, ErrNoSelection):
		e.message = "select a shape first (tab)"
	default:
		e.message = err.Error()
	}
	e.app.logger.Debug("key: %v", err)
}

func (e *editor) setStatus(msg string) {
	e.message = msg
}

// refresh redraws with an up to date status line.
func (e *editor) refresh() {
	r := e.app.renderer
	stack := e.app.stack
	r.SetStatus(fmt.Sprintf("%s | shapes %d | history %d/%d",
		e.message, len(e.app.modeling.Canvas().Shapes()), stack.Index()+1, stack.Len()))
	r.Draw()
}

func (e *editor) selected() (*diagram.Shape, error) {
	id := e.app.renderer.Selected()
	if id == "" {
		return nil, ErrNoSelection
	}
	return e.app.modeling.Canvas().Shape(id)
}

func (e *editor) create() error {
	canvas := e.app.cfg.Canvas
	bounds := diagram.Bounds{X: 2, Y: 1, Width: canvas.ShapeWidth, Height: canvas.ShapeHeight}
	bounds = bounds.Translate(e.app.renderer.Origin())
	if sel, err := e.selected(); err == nil {
		bounds.X = sel.Bounds.X + sel.Bounds.Width + 4
		bounds.Y = sel.Bounds.Y
	}

	shape, err := e.app.modeling.CreateShape("shape", bounds, fmt.Sprintf("S%d", e.created+1))
	if err != nil {
		return err
	}
	e.created++
	e.app.renderer.Select(shape.ID)
	e.message = helpLine
	return nil
}

func (e *editor) move(d diagram.Point) error {
	sel, err := e.selected()
	if err != nil {
		return err
	}
	return e.app.modeling.MoveShape(sel.ID, d)
}

func (e *editor) resize(d int) error {
	sel, err := e.selected()
	if err != nil {
		return err
	}
	b := sel.Bounds
	b.Width += d
	b.Height += d
	return e.app.modeling.ResizeShape(sel.ID, b)
}

func (e *editor) connect() error {
	sel, err := e.selected()
	if err != nil {
		return err
	}
	if e.connectFrom == "" {
		e.connectFrom = sel.ID
		e.message = "connect: select the target and press c (esc cancels)"
		return nil
	}

	from := e.connectFrom
	e.connectFrom = ""
	e.message = helpLine
	_, err = e.app.modeling.Connect(from, sel.ID, "")
	return err
}

func (e *editor) remove() error {
	sel, err := e.selected()
	if err != nil {
		return err
	}
	if e.connectFrom == sel.ID {
		e.connectFrom = ""
	}
	return e.app.modeling.DeleteShape(sel.ID)
}

func (e *editor) selectNext(dir int) {
	shapes := e.app.modeling.Canvas().Shapes()
	if len(shapes) == 0 {
		return
	}
	idx := slices.IndexFunc(shapes, func(s *diagram.Shape) bool {
		return s.ID == e.app.renderer.Selected()
	})
	switch {
	case idx < 0 && dir < 0:
		idx = len(shapes) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + len(shapes)) % len(shapes)
	}
	e.app.renderer.Select(shapes[idx].ID)
}

func (e *editor) reloadAll() error {
	var errs []error
	for _, p := range e.app.scriptOrder {
		errs = append(errs, e.app.ReloadScript(p))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	e.message = fmt.Sprintf("reloaded %d script(s)", len(e.app.scriptOrder))
	return nil
}
