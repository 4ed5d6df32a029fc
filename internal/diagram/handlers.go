package diagram

import (
	"fmt"

	"github.com/dshills/drafter/internal/command"
)

var (
	_ command.CanExecuter  = (*createShapeHandler)(nil)
	_ command.PostExecuter = (*createShapeHandler)(nil)
	_ command.PostExecuter = (*createConnectionHandler)(nil)
	_ command.PreExecuter  = (*updateLabelHandler)(nil)
	_ command.PostExecuter = (*updateLabelHandler)(nil)
)

// RegisterHandlers registers every diagram command on s, operating on canvas.
func RegisterHandlers(s *command.Stack, canvas *Canvas) error {
	handlers := map[string]command.Handler{
		CmdShapeCreate:         &createShapeHandler{canvas: canvas, stack: s},
		CmdShapeDelete:         &deleteShapeHandler{canvas: canvas},
		CmdShapeMove:           &moveShapeHandler{canvas: canvas},
		CmdShapeResize:         &resizeShapeHandler{canvas: canvas},
		CmdConnectionCreate:    &createConnectionHandler{canvas: canvas, stack: s},
		CmdConnectionDelete:    &deleteConnectionHandler{canvas: canvas},
		CmdConnectionReconnect: &reconnectHandler{canvas: canvas},
		CmdConnectionLayout:    &layoutConnectionHandler{canvas: canvas},
		CmdLabelCreate:         &createLabelHandler{canvas: canvas},
		CmdLabelDelete:         &deleteLabelHandler{canvas: canvas},
		CmdLabelMove:           &moveLabelHandler{canvas: canvas},
		CmdUpdateLabel:         &updateLabelHandler{canvas: canvas, stack: s},
	}
	for name, h := range handlers {
		if err := s.Register(name, h); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}
