package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/diagram"
)

func setupRenderer(t *testing.T) (*Renderer, *diagram.Modeling, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 12)
	t.Cleanup(screen.Fini)

	s := command.New(nil)
	m, err := diagram.New(s, diagram.NewCanvas())
	require.NoError(t, err)

	r := New(screen, m.Canvas())
	require.NoError(t, r.Attach(s.Bus()))
	t.Cleanup(func() { _ = r.Detach() })
	return r, m, screen
}

func cell(screen tcell.Screen, x, y int) rune {
	ch, _, _, _ := screen.GetContent(x, y)
	return ch
}

func row(screen tcell.Screen, y, from, to int) string {
	var b strings.Builder
	for x := from; x < to; x++ {
		b.WriteRune(cell(screen, x, y))
	}
	return b.String()
}

func TestRenderer_DrawsShapeAndLabel(t *testing.T) {
	r, m, screen := setupRenderer(t)

	shape, err := m.CreateShape("task", diagram.Bounds{X: 1, Y: 1, Width: 6, Height: 3}, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Redraws())

	assert.Equal(t, tcell.RuneULCorner, cell(screen, 1, 1))
	assert.Equal(t, tcell.RuneURCorner, cell(screen, 6, 1))
	assert.Equal(t, tcell.RuneLLCorner, cell(screen, 1, 3))
	assert.Equal(t, tcell.RuneLRCorner, cell(screen, 6, 3))
	assert.Equal(t, "│task│", row(screen, 2, 1, 7))
	assert.Equal(t, 'A', cell(screen, 1, 4))

	dirty := r.LastDirty()
	assert.Contains(t, dirty, shape.ID)
	assert.Contains(t, dirty, shape.LabelID)
}

func TestRenderer_RedrawsOncePerCall(t *testing.T) {
	r, m, screen := setupRenderer(t)

	a, err := m.CreateShape("task", diagram.Bounds{X: 1, Y: 1, Width: 6, Height: 3}, "A")
	require.NoError(t, err)
	b, err := m.CreateShape("task", diagram.Bounds{X: 14, Y: 1, Width: 6, Height: 3}, "")
	require.NoError(t, err)
	_, err = m.Connect(a.ID, b.ID, "")
	require.NoError(t, err)
	require.Equal(t, 3, r.Redraws())

	// Moving the shape also moves its label and relayouts the connection,
	// all within one call.
	require.NoError(t, m.MoveShape(a.ID, diagram.Point{Y: 1}))
	assert.Equal(t, 4, r.Redraws())
	assert.Equal(t, 'A', cell(screen, 1, 5))

	require.NoError(t, m.Stack().Undo())
	assert.Equal(t, 5, r.Redraws())
	assert.Equal(t, 'A', cell(screen, 1, 4))

	require.NoError(t, m.Stack().Undo())
	assert.Equal(t, 6, r.Redraws())
}

func TestRenderer_DrawsConnections(t *testing.T) {
	t.Run("straight", func(t *testing.T) {
		_, m, screen := setupRenderer(t)
		a, err := m.CreateShape("task", diagram.Bounds{X: 1, Y: 1, Width: 6, Height: 3}, "")
		require.NoError(t, err)
		b, err := m.CreateShape("task", diagram.Bounds{X: 14, Y: 1, Width: 6, Height: 3}, "")
		require.NoError(t, err)
		_, err = m.Connect(a.ID, b.ID, "")
		require.NoError(t, err)

		assert.Equal(t, strings.Repeat("─", 7), row(screen, 2, 7, 14))
	})

	t.Run("elbow", func(t *testing.T) {
		_, m, screen := setupRenderer(t)
		a, err := m.CreateShape("task", diagram.Bounds{Width: 4, Height: 4}, "")
		require.NoError(t, err)
		b, err := m.CreateShape("task", diagram.Bounds{X: 10, Y: 6, Width: 4, Height: 4}, "")
		require.NoError(t, err)
		_, err = m.Connect(a.ID, b.ID, "")
		require.NoError(t, err)

		assert.Equal(t, tcell.RuneHLine, cell(screen, 8, 2))
		assert.Equal(t, tcell.RunePlus, cell(screen, 12, 2))
		assert.Equal(t, tcell.RuneVLine, cell(screen, 12, 5))
	})
}

func TestRenderer_Selection(t *testing.T) {
	r, m, screen := setupRenderer(t)
	shape, err := m.CreateShape("task", diagram.Bounds{X: 1, Y: 1, Width: 6, Height: 3}, "")
	require.NoError(t, err)

	r.Select(shape.ID)
	r.Draw()
	_, _, style, _ := screen.GetContent(1, 1)
	assert.Equal(t, r.theme.Selected, style)

	require.NoError(t, m.DeleteShape(shape.ID))
	assert.Empty(t, r.Selected(), "deleting the selected shape clears the selection")
	assert.Equal(t, ' ', cell(screen, 1, 1))
}

func TestRenderer_ScrollAndStatus(t *testing.T) {
	r, m, screen := setupRenderer(t)
	_, err := m.CreateShape("task", diagram.Bounds{X: 1, Y: 1, Width: 6, Height: 3}, "")
	require.NoError(t, err)

	r.Scroll(diagram.Point{X: 1, Y: 1})
	r.SetStatus("ready")
	r.Draw()

	assert.Equal(t, diagram.Point{X: 1, Y: 1}, r.Origin())
	assert.Equal(t, tcell.RuneULCorner, cell(screen, 0, 0))
	assert.Equal(t, "ready", row(screen, 11, 0, 5))
}

func TestRenderer_ClipsToScreen(t *testing.T) {
	_, m, screen := setupRenderer(t)
	_, err := m.CreateShape("task", diagram.Bounds{X: 36, Y: 9, Width: 8, Height: 4}, "")
	require.NoError(t, err)

	assert.Equal(t, tcell.RuneULCorner, cell(screen, 36, 9))
	assert.NotEqual(t, tcell.RuneVLine, cell(screen, 36, 11), "status line is not drawn over")
}

func TestRenderer_AttachDetach(t *testing.T) {
	r, m, _ := setupRenderer(t)
	require.ErrorIs(t, r.Attach(m.Stack().Bus()), ErrAttached)

	require.NoError(t, r.Detach())
	require.NoError(t, r.Detach())

	_, err := m.CreateShape("task", diagram.Bounds{Width: 4, Height: 4}, "")
	require.NoError(t, err)
	assert.Zero(t, r.Redraws())
}
