package diagram

import (
	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/command/intercept"
)

// installBehaviors registers the follow-up commands that keep the diagram
// consistent.
func installBehaviors(ic *intercept.Interceptor, s *command.Stack, canvas *Canvas) error {
	steps := []func() (*intercept.Registration, error){
		// Deleting a shape first deletes its connections and label.
		func() (*intercept.Registration, error) {
			return ic.PreExecute([]string{CmdShapeDelete}, intercept.Typed(func(c *DeleteShapeContext, _ *intercept.Invocation) error {
				for _, conn := range canvas.ConnectionsOf(c.ShapeID) {
					if err := s.Execute(CmdConnectionDelete, &DeleteConnectionContext{ConnectionID: conn.ID}); err != nil {
						return err
					}
				}
				shape, err := canvas.Shape(c.ShapeID)
				if err != nil {
					return err
				}
				return deleteLabelOf(s, shape)
			}))
		},
		func() (*intercept.Registration, error) {
			return ic.PreExecute([]string{CmdConnectionDelete}, intercept.Typed(func(c *DeleteConnectionContext, _ *intercept.Invocation) error {
				conn, err := canvas.Connection(c.ConnectionID)
				if err != nil {
					return err
				}
				return deleteLabelOf(s, conn)
			}))
		},
		// Labels follow their shape.
		func() (*intercept.Registration, error) {
			return ic.PostExecute([]string{CmdShapeMove}, intercept.Typed(func(c *MoveShapeContext, _ *intercept.Invocation) error {
				shape, err := canvas.Shape(c.ShapeID)
				if err != nil || shape.LabelID == "" {
					return err
				}
				return s.Execute(CmdLabelMove, &MoveLabelContext{LabelID: shape.LabelID, Delta: c.Delta})
			}))
		},
		// Attached connections are re-laid out once the shape settled.
		func() (*intercept.Registration, error) {
			return ic.PostExecuted([]string{CmdShapeMove, CmdShapeResize}, func(inv *intercept.Invocation) error {
				id := shapeIDOf(inv.Context())
				for _, conn := range canvas.ConnectionsOf(id) {
					if err := s.Execute(CmdConnectionLayout, &LayoutConnectionContext{ConnectionID: conn.ID}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func() (*intercept.Registration, error) {
			return ic.PostExecuted([]string{CmdConnectionReconnect}, intercept.Typed(func(c *ReconnectContext, _ *intercept.Invocation) error {
				return s.Execute(CmdConnectionLayout, &LayoutConnectionContext{ConnectionID: c.ConnectionID})
			}))
		},
	}

	for _, step := range steps {
		if _, err := step(); err != nil {
			return err
		}
	}
	return nil
}

func deleteLabelOf(s *command.Stack, owner labelled) error {
	if owner.labelID() == "" {
		return nil
	}
	return s.Execute(CmdLabelDelete, &DeleteLabelContext{LabelID: owner.labelID()})
}

func shapeIDOf(ctx command.Context) string {
	switch c := ctx.(type) {
	case *MoveShapeContext:
		return c.ShapeID
	case *ResizeShapeContext:
		return c.ShapeID
	}
	return ""
}
