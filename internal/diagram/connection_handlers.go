package diagram

import (
	"fmt"
	"slices"

	"github.com/dshills/drafter/internal/command"
)

// CreateConnectionContext is the context of connection.create.
// Connection.ID is assigned on first execution when empty; empty
// waypoints are routed between the two shapes.
type CreateConnectionContext struct {
	Connection *Connection
	Text       string
}

// DeleteConnectionContext is the context of connection.delete.
type DeleteConnectionContext struct {
	ConnectionID string

	conn  *Connection
	index int
}

// ReconnectContext is the context of connection.reconnect.
// An empty SourceID or TargetID keeps that end.
type ReconnectContext struct {
	ConnectionID string
	SourceID     string
	TargetID     string

	oldSource string
	oldTarget string
}

// LayoutConnectionContext is the context of connection.layout.
type LayoutConnectionContext struct {
	ConnectionID string

	old []Point
}

// Ends returns the source and target the connection has after reconnecting.
func (c *ReconnectContext) Ends(conn *Connection) (string, string) {
	source, target := conn.SourceID, conn.TargetID
	if c.SourceID != "" {
		source = c.SourceID
	}
	if c.TargetID != "" {
		target = c.TargetID
	}
	return source, target
}

type createConnectionHandler struct {
	canvas *Canvas
	stack  *command.Stack
}

func (h *createConnectionHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*CreateConnectionContext](ctx)
	if err != nil || c.Connection == nil {
		return command.Deny
	}
	if _, _, err := h.ends(c.Connection.SourceID, c.Connection.TargetID); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *createConnectionHandler) ends(source, target string) (*Shape, *Shape, error) {
	src, err := h.canvas.Shape(source)
	if err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}
	tgt, err := h.canvas.Shape(target)
	if err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	return src, tgt, nil
}

func (h *createConnectionHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	if c.Connection == nil {
		return nil, fmt.Errorf("%w: connection required", ErrInvalidElement)
	}
	conn := c.Connection
	src, tgt, err := h.ends(conn.SourceID, conn.TargetID)
	if err != nil {
		return nil, err
	}
	if conn.ID == "" {
		conn.ID = NewID(KindConnection)
	}
	if len(conn.Waypoints) == 0 {
		conn.Waypoints = Route(src.Bounds, tgt.Bounds)
	}
	if err := h.canvas.Add(conn); err != nil {
		return nil, err
	}
	return []command.Element{conn}, nil
}

func (h *createConnectionHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*CreateConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := h.canvas.Remove(c.Connection.ID); err != nil {
		return nil, err
	}
	return []command.Element{c.Connection}, nil
}

// PostExecute labels the new connection.
func (h *createConnectionHandler) PostExecute(ctx command.Context) error {
	c, err := command.ContextAs[*CreateConnectionContext](ctx)
	if err != nil {
		return err
	}
	if c.Text == "" {
		return nil
	}
	return h.stack.Execute(CmdLabelCreate, &CreateLabelContext{
		Label: &Label{OwnerID: c.Connection.ID, Text: c.Text},
	})
}

type deleteConnectionHandler struct {
	canvas *Canvas
}

func (h *deleteConnectionHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*DeleteConnectionContext](ctx)
	if err != nil {
		return command.Deny
	}
	if _, err := h.canvas.Connection(c.ConnectionID); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *deleteConnectionHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	if _, err := h.canvas.Connection(c.ConnectionID); err != nil {
		return nil, err
	}
	el, index, err := h.canvas.Remove(c.ConnectionID)
	if err != nil {
		return nil, err
	}
	c.conn = el.(*Connection)
	c.index = index
	return []command.Element{c.conn}, nil
}

func (h *deleteConnectionHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*DeleteConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	if err := h.canvas.Insert(c.conn, c.index); err != nil {
		return nil, err
	}
	return []command.Element{c.conn}, nil
}

type reconnectHandler struct {
	canvas *Canvas
}

func (h *reconnectHandler) CanExecute(ctx command.Context) command.Decision {
	c, err := command.ContextAs[*ReconnectContext](ctx)
	if err != nil {
		return command.Deny
	}
	conn, err := h.canvas.Connection(c.ConnectionID)
	if err != nil {
		return command.Deny
	}
	source, target := c.Ends(conn)
	if _, err := h.canvas.Shape(source); err != nil {
		return command.Deny
	}
	if _, err := h.canvas.Shape(target); err != nil {
		return command.Deny
	}
	return command.Allow
}

func (h *reconnectHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*ReconnectContext](ctx)
	if err != nil {
		return nil, err
	}
	conn, err := h.canvas.Connection(c.ConnectionID)
	if err != nil {
		return nil, err
	}
	source, target := c.Ends(conn)
	for _, id := range []string{source, target} {
		if _, err := h.canvas.Shape(id); err != nil {
			return nil, err
		}
	}
	c.oldSource, c.oldTarget = conn.SourceID, conn.TargetID
	conn.SourceID, conn.TargetID = source, target
	return []command.Element{conn}, nil
}

func (h *reconnectHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*ReconnectContext](ctx)
	if err != nil {
		return nil, err
	}
	conn, err := h.canvas.Connection(c.ConnectionID)
	if err != nil {
		return nil, err
	}
	conn.SourceID, conn.TargetID = c.oldSource, c.oldTarget
	return []command.Element{conn}, nil
}

type layoutConnectionHandler struct {
	canvas *Canvas
}

func (h *layoutConnectionHandler) Execute(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*LayoutConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	conn, err := h.canvas.Connection(c.ConnectionID)
	if err != nil {
		return nil, err
	}
	src, err := h.canvas.Shape(conn.SourceID)
	if err != nil {
		return nil, err
	}
	tgt, err := h.canvas.Shape(conn.TargetID)
	if err != nil {
		return nil, err
	}
	c.old = slices.Clone(conn.Waypoints)
	conn.Waypoints = Route(src.Bounds, tgt.Bounds)
	return []command.Element{conn}, nil
}

func (h *layoutConnectionHandler) Revert(ctx command.Context) ([]command.Element, error) {
	c, err := command.ContextAs[*LayoutConnectionContext](ctx)
	if err != nil {
		return nil, err
	}
	conn, err := h.canvas.Connection(c.ConnectionID)
	if err != nil {
		return nil, err
	}
	conn.Waypoints = slices.Clone(c.old)
	return []command.Element{conn}, nil
}
