package diagram

import (
	"fmt"

	"github.com/dshills/drafter/internal/command"
)

// CreateLabelContext is the context of label.create.
// A zero Label.Position places the label at its owner's anchor.
type CreateLabelContext struct {
	Label *Label
}

// DeleteLabelContext is the context of label.delete.
type DeleteLabelContext struct {
	LabelID string

	label *Label
	index int
}

// MoveLabelContext is the context of label.move.
type MoveLabelContext struct {
	LabelID string
	Delta   Point
}

// UpdateLabelContext is the context of element.updateLabel.
// Setting text on an unlabelled element creates its label; setting empty
// text deletes it.
type UpdateLabelContext struct {
	ElementID string
	Text      string

	oldText string
	changed bool
}

type createLabelHandler struct {
	canvas *Canvas
}

func (h *createLabelHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*CreateLabelContext](ctx)
	if err != nil || c.Label == nil {
		return command.Deny
	}
	owner, err := h.canvas.labelOwner(c.Label.OwnerID)
	if err != nil || owner.labelID() != "" {
		return command.Deny
	}
	return command.Allow
}

func (h *createLabelHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	if c.Label == nil {
		return nil, fmt.Errorf("%w: label required", ErrInvalidElement)
	}
	owner, err := h.canvas.labelOwner(c.Label.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.labelID() != "" {
		return nil, fmt.Errorf("%w: %s", ErrLabelExists, owner.ElementID())
	}
	if c.Label.ID == "" {
		c.Label.ID = NewID(KindLabel)
		if c.Label.Position.IsZero() {
			c.Label.Position = owner.labelAnchor()
		}
	}
	if err := h.canvas.Add(c.Label); err != nil {
		return nil, err
	}
	owner.setLabelID(c.Label.ID)
	return []command.Element{c.Label, owner}, nil
}

func (h *createLabelHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := h.canvas.Remove(c.Label.ID); err != nil {
		return nil, err
	}
	elements := []command.Element{c.Label}
	if owner, err := h.canvas.labelOwner(c.Label.OwnerID); err == nil {
		owner.setLabelID("")
		elements = append(elements, owner)
	}
	return elements, nil
}

type deleteLabelHandler struct {
	canvas *Canvas
}

func (h *deleteLabelHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, err := h.canvas.Label(c.LabelID); err != nil {
		return nil, err
	}
	el, index, err := h.canvas.Remove(c.LabelID)
	if err != nil {
		return nil, err
	}
	c.label = el.(*Label)
	c.index = index

	elements := []command.Element{c.label}
	if owner, err := h.canvas.labelOwner(c.label.OwnerID); err == nil {
		owner.setLabelID("")
		elements = append(elements, owner)
	}
	return elements, nil
}

func (h *deleteLabelHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	if err := h.canvas.Insert(c.label, c.index); err != nil {
		return nil, err
	}
	elements := []command.Element{c.label}
	if owner, err := h.canvas.labelOwner(c.label.OwnerID); err == nil {
		owner.setLabelID(c.label.ID)
		elements = append(elements, owner)
	}
	return elements, nil
}

type moveLabelHandler struct {
	canvas *Canvas
}

func (h *moveLabelHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*MoveLabelContext](ctx)
	if err != nil {
		return command.Deny
	}
	if _, err := h.canvas.Label(c.LabelID); err != nil {
		return command.Deny
	}
	if c.Delta.IsZero() {
		return command.Ignore
	}
	return command.Allow
}

func (h *moveLabelHandler) Execute(ctx command.Context) ([]command.Element, error) {
	return h.translate(ctx, false)
}

func (h *moveLabelHandler) Revert(ctx command.Context) ([]command.Element, error) {
	return h.translate(ctx, true)
}

func (h *moveLabelHandler) translate(ctx command.Context, back bool) ([]command.Element, error) {
	c, err := command.ContextAs[*MoveLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	label, err := h.canvas.Label(c.LabelID)
	if err != nil {
		return nil, err
	}
	delta := c.Delta
	if back {
		delta = delta.Neg()
	}
	label.Position = label.Position.Add(delta)
	return []command.Element{label}, nil
}

type updateLabelHandler struct {
	canvas *Canvas
	stack  *command.Stack
}

func (h *updateLabelHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*UpdateLabelContext](ctx)
	if err != nil {
		return command.Deny
	}
	owner, err := h.canvas.labelOwner(c.ElementID)
	if err != nil {
		return command.Deny
	}
	if owner.labelID() == "" && c.Text == "" {
		return command.Ignore
	}
	return command.Allow
}

// PreExecute creates the label of an unlabelled element.
func (h *updateLabelHandler) PreExecute(ctx command.Context) error {
	c, err := command.ContextAs[*UpdateLabelContext](ctx)
	if err != nil {
		return err
	}
	owner, err := h.canvas.labelOwner(c.ElementID)
	if err != nil {
		return err
	}
	if owner.labelID() != "" || c.Text == "" {
		return nil
	}
	return h.stack.Execute(CmdLabelCreate, &CreateLabelContext{
		Label: &Label{OwnerID: c.ElementID},
	})
}

func (h *updateLabelHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*UpdateLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	owner, err := h.canvas.labelOwner(c.ElementID)
	if err != nil {
		return nil, err
	}
	c.changed = false
	if owner.labelID() == "" {
		return nil, nil
	}
	label, err := h.canvas.Label(owner.labelID())
	if err != nil {
		return nil, err
	}
	c.oldText = label.Text
	c.changed = true
	label.Text = c.Text
	return []command.Element{label, owner}, nil
}

func (h *updateLabelHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*UpdateLabelContext](ctx)
	if err != nil {
		return nil, err
	}
	if !c.changed {
		return nil, nil
	}
	owner, err := h.canvas.labelOwner(c.ElementID)
	if err != nil {
		return nil, err
	}
	label, err := h.canvas.Label(owner.labelID())
	if err != nil {
		return nil, err
	}
	label.Text = c.oldText
	return []command.Element{label, owner}, nil
}

// PostExecute deletes a label whose text was cleared.
func (h *updateLabelHandler) PostExecute(ctx command.Context) error {
	c, err := command.ContextAs[*UpdateLabelContext](ctx)
	if err != nil {
		return err
	}
	if c.Text != "" {
		return nil
	}
	owner, err := h.canvas.labelOwner(c.ElementID)
	if err != nil {
		return err
	}
	if owner.labelID() == "" {
		return nil
	}
	return h.stack.Execute(CmdLabelDelete, &DeleteLabelContext{LabelID: owner.labelID()})
}
