package diagram

import (
	"github.com/dshills/drafter/internal/command/intercept"
	"github.com/dshills/drafter/internal/event"
)

// Rules are the modeling constraints checked in the canExecute phase.
type Rules struct {
	// MinWidth and MinHeight bound shape sizes.
	MinWidth  int
	MinHeight int

	// AllowSelfLoops permits connections from a shape to itself.
	AllowSelfLoops bool
}

// DefaultRules returns the rules used by the editor.
func DefaultRules() Rules {
	return Rules{MinWidth: 3, MinHeight: 3}
}

// install registers the rules. Rules only ever deny or ignore; anything
// they do not decide falls through to the handler's own check.
func (r Rules) install(ic *intercept.Interceptor, canvas *Canvas) error {
	prio := intercept.WithPriority(event.PriorityHigh)

	if _, err := ic.CanExecute([]string{CmdConnectionCreate}, intercept.Typed(func(c *CreateConnectionContext, inv *intercept.Invocation) error {
		if c.Connection == nil {
			return nil
		}
		if !r.connectable(canvas, c.Connection.SourceID, c.Connection.TargetID) {
			inv.Deny()
		}
		return nil
	}), prio); err != nil {
		return err
	}

	if _, err := ic.CanExecute([]string{CmdConnectionReconnect}, intercept.Typed(func(c *ReconnectContext, inv *intercept.Invocation) error {
		conn, err := canvas.Connection(c.ConnectionID)
		if err != nil {
			return nil
		}
		source, target := c.Ends(conn)
		if !r.connectable(canvas, source, target) {
			inv.Deny()
		}
		return nil
	}), prio); err != nil {
		return err
	}

	if _, err := ic.CanExecute([]string{CmdShapeResize}, intercept.Typed(func(c *ResizeShapeContext, inv *intercept.Invocation) error {
		if c.Bounds.Width < r.MinWidth || c.Bounds.Height < r.MinHeight {
			inv.Deny()
		}
		return nil
	}), prio); err != nil {
		return err
	}

	if _, err := ic.CanExecute([]string{CmdShapeCreate}, intercept.Typed(func(c *CreateShapeContext, inv *intercept.Invocation) error {
		if c.Shape != nil && (c.Shape.Bounds.Width < r.MinWidth || c.Shape.Bounds.Height < r.MinHeight) {
			inv.Deny()
		}
		return nil
	}), prio); err != nil {
		return err
	}

	// A move by nothing is neither allowed nor denied.
	if _, err := ic.CanExecute([]string{CmdShapeMove}, intercept.Typed(func(c *MoveShapeContext, inv *intercept.Invocation) error {
		if c.Delta.IsZero() {
			inv.Ignore()
		}
		return nil
	}), prio); err != nil {
		return err
	}

	return nil
}

func (r Rules) connectable(canvas *Canvas, source, target string) bool {
	if source == target && !r.AllowSelfLoops {
		return false
	}
	if _, err := canvas.Shape(source); err != nil {
		return false
	}
	if _, err := canvas.Shape(target); err != nil {
		return false
	}
	return true
}
