package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/diagram"
)

// WriteSummary prints the elements on the canvas and the undo history.
func (app *Application) WriteSummary(w io.Writer) error {
	canvas := app.modeling.Canvas()
	var b strings.Builder

	shapes := canvas.Shapes()
	fmt.Fprintf(&b, "shapes (%d):\n", len(shapes))
	for _, s := range shapes {
		fmt.Fprintf(&b, "  %s %s at %s%s\n", s.ID, s.Type, s.Bounds, labelText(canvas, s.LabelID))
	}

	conns := canvas.Connections()
	fmt.Fprintf(&b, "connections (%d):\n", len(conns))
	for _, c := range conns {
		fmt.Fprintf(&b, "  %s %s -> %s%s\n", c.ID, c.SourceID, c.TargetID, labelText(canvas, c.LabelID))
	}

	steps := historySteps(app.stack.Actions())
	current := app.stack.Index()
	fmt.Fprintf(&b, "history (%d steps):\n", len(steps))
	for _, step := range steps {
		marker := " "
		if step.last > current {
			marker = "~"
		}
		fmt.Fprintf(&b, " %s#%d %s\n", marker, step.id, strings.Join(step.commands, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func labelText(canvas *diagram.Canvas, id string) string {
	if id == "" {
		return ""
	}
	l, err := canvas.Label(id)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" %q", l.Text)
}

// historyStep is one undo step: consecutive actions sharing an ID.
type historyStep struct {
	id       int
	commands []string
	// last is the stack index of the step's final action.
	last int
}

func historySteps(actions []command.Action) []historyStep {
	var steps []historyStep
	for i, a := range actions {
		if n := len(steps); n > 0 && steps[n-1].id == a.ID {
			steps[n-1].commands = append(steps[n-1].commands, a.Command)
			steps[n-1].last = i
			continue
		}
		steps = append(steps, historyStep{id: a.ID, commands: []string{a.Command}, last: i})
	}
	return steps
}
