package diagram

import (
	"fmt"

	"github.com/dshills/drafter/internal/command"
)

// CreateShapeContext is the context of shape.create.
// Shape.ID is assigned on first execution when empty.
type CreateShapeContext struct {
	Shape *Shape
	Text  string
}

// DeleteShapeContext is the context of shape.delete.
type DeleteShapeContext struct {
	ShapeID string

	shape *Shape
	index int
}

// MoveShapeContext is the context of shape.move.
type MoveShapeContext struct {
	ShapeID string
	Delta   Point
}

// ResizeShapeContext is the context of shape.resize.
type ResizeShapeContext struct {
	ShapeID string
	Bounds  Bounds

	old Bounds
}

type createShapeHandler struct {
	canvas *Canvas
	stack  *command.Stack
}

func (h *createShapeHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*CreateShapeContext](ctx)
	if err != nil || c.Shape == nil || c.Shape.Bounds.Empty() {
		return command.Deny
	}
	if c.Shape.ID != "" && h.canvas.Has(c.Shape.ID) {
		return command.Deny
	}
	return command.Allow
}

func (h *createShapeHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	if c.Shape == nil {
		return nil, fmt.Errorf("%w: shape required", ErrInvalidElement)
	}
	if c.Shape.ID == "" {
		c.Shape.ID = NewID(KindShape)
	}
	if err := h.canvas.Add(c.Shape); err != nil {
		return nil, err
	}
	return []command.Element{c.Shape}, nil
}

func (h *createShapeHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := h.canvas.Remove(c.Shape.ID); err != nil {
		return nil, err
	}
	return []command.Element{c.Shape}, nil
}

// PostExecute labels the new shape.
func (h *createShapeHandler) PostExecute(ctx command.Context) error {
	c, err := command.ContextAs[*CreateShapeContext](ctx)
	if err != nil {
		return err
	}
	if c.Text == "" {
		return nil
	}
	return h.stack.Execute(CmdLabelCreate, &CreateLabelContext{
		Label: &Label{OwnerID: c.Shape.ID, Text: c.Text},
	})
}

type deleteShapeHandler struct {
	canvas *Canvas
}

func (h *deleteShapeHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*DeleteShapeContext](ctx)
	if err != nil {
		return command.Deny
	}
	if _, err := h.canvas.Shape(c.ShapeID); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *deleteShapeHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, err := h.canvas.Shape(c.ShapeID); err != nil {
		return nil, err
	}
	el, index, err := h.canvas.Remove(c.ShapeID)
	if err != nil {
		return nil, err
	}
	c.shape = el.(*Shape)
	c.index = index
	return []command.Element{c.shape}, nil
}

func (h *deleteShapeHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	if err := h.canvas.Insert(c.shape, c.index); err != nil {
		return nil, err
	}
	return []command.Element{c.shape}, nil
}

type moveShapeHandler struct {
	canvas *Canvas
}

func (h *moveShapeHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*MoveShapeContext](ctx)
	if err != nil {
		return command.Deny
	}
	if _, err := h.canvas.Shape(c.ShapeID); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *moveShapeHandler) Execute(ctx command.Context) ([]command.Element, error) {
	return h.translate(ctx, false)
}

func (h *moveShapeHandler) Revert(ctx command.Context) ([]command.Element, error) {
	return h.translate(ctx, true)
}

func (h *moveShapeHandler) translate(ctx command.Context, back bool) ([]command.Element, error) {
	c, err := command.ContextAs[*MoveShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	shape, err := h.canvas.Shape(c.ShapeID)
	if err != nil {
		return nil, err
	}
	delta := c.Delta
	if back {
		delta = delta.Neg()
	}
	shape.Bounds = shape.Bounds.Translate(delta)
	return []command.Element{shape}, nil
}

type resizeShapeHandler struct {
	canvas *Canvas
}

func (h *resizeShapeHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*ResizeShapeContext](ctx)
	if err != nil || c.Bounds.Empty() {
		return command.Deny
	}
	if _, err := h.canvas.Shape(c.ShapeID); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *resizeShapeHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*ResizeShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	shape, err := h.canvas.Shape(c.ShapeID)
	if err != nil {
		return nil, err
	}
	c.old = shape.Bounds
	shape.Bounds = c.Bounds
	return []command.Element{shape}, nil
}

func (h *resizeShapeHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*ResizeShapeContext](ctx)
	if err != nil {
		return nil, err
	}
	shape, err := h.canvas.Shape(c.ShapeID)
	if err != nil {
		return nil, err
	}
	shape.Bounds = c.old
	return []command.Element{shape}, nil
}
