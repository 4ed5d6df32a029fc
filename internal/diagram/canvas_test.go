package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(elements []Element) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.ElementID()
	}
	return out
}

func TestCanvas_AddGetRemove(t *testing.T) {
	c := NewCanvas()
	a := &Shape{ID: "a", Bounds: Bounds{Width: 4, Height: 4}}
	b := &Shape{ID: "b", Bounds: Bounds{X: 10, Width: 4, Height: 4}}

	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))
	require.ErrorIs(t, c.Add(&Shape{ID: "a"}), ErrDuplicateID)
	require.ErrorIs(t, c.Add(&Shape{}), ErrInvalidElement)
	require.ErrorIs(t, c.Add(nil), ErrInvalidElement)

	got, err := c.Shape("a")
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, 2, c.Len())

	_, err = c.Connection("a")
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = c.Label("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	el, index, err := c.Remove("a")
	require.NoError(t, err)
	assert.Same(t, a, el)
	assert.Equal(t, 0, index)
	assert.False(t, c.Has("a"))

	_, _, err = c.Remove("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanvas_InsertKeepsOrder(t *testing.T) {
	c := NewCanvas()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Add(&Shape{ID: id}))
	}

	el, index, err := c.Remove("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(c.Elements()))

	require.NoError(t, c.Insert(el, index))
	assert.Equal(t, []string{"a", "b", "c"}, ids(c.Elements()))

	require.NoError(t, c.Insert(&Shape{ID: "z"}, 99))
	assert.Equal(t, []string{"a", "b", "c", "z"}, ids(c.Elements()))
}

func TestCanvas_Queries(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, c.Add(&Shape{ID: "a", Bounds: Bounds{X: 0, Y: 0, Width: 10, Height: 10}}))
	require.NoError(t, c.Add(&Shape{ID: "b", Bounds: Bounds{X: 5, Y: 5, Width: 10, Height: 10}}))
	require.NoError(t, c.Add(&Connection{ID: "ab", SourceID: "a", TargetID: "b"}))
	require.NoError(t, c.Add(&Label{ID: "l", OwnerID: "a"}))

	assert.Len(t, c.Shapes(), 2)
	assert.Len(t, c.Connections(), 1)
	assert.Len(t, c.Labels(), 1)
	assert.Len(t, c.ConnectionsOf("b"), 1)
	assert.Empty(t, c.ConnectionsOf("l"))

	top, ok := c.ShapeAt(Point{X: 6, Y: 6})
	require.True(t, ok)
	assert.Equal(t, "b", top.ID, "later shapes are on top")

	_, ok = c.ShapeAt(Point{X: 50, Y: 50})
	assert.False(t, ok)
}

func TestGeometry(t *testing.T) {
	b := Bounds{X: 2, Y: 4, Width: 6, Height: 4}
	assert.Equal(t, Point{X: 5, Y: 6}, b.Center())
	assert.Equal(t, Bounds{X: 3, Y: 2, Width: 6, Height: 4}, b.Translate(Point{X: 1, Y: -2}))
	assert.True(t, b.Contains(Point{X: 2, Y: 4}))
	assert.False(t, b.Contains(Point{X: 8, Y: 4}))
	assert.True(t, Bounds{Width: 0, Height: 3}.Empty())
	assert.Equal(t, "2,4 6x4", b.String())
	assert.Equal(t, Point{X: -1, Y: 2}, Point{X: 1, Y: -2}.Neg())

	aligned := Route(Bounds{Width: 4, Height: 4}, Bounds{X: 10, Width: 4, Height: 4})
	assert.Equal(t, []Point{{X: 2, Y: 2}, {X: 12, Y: 2}}, aligned)

	elbow := Route(Bounds{Width: 4, Height: 4}, Bounds{X: 10, Y: 10, Width: 4, Height: 4})
	assert.Equal(t, []Point{{X: 2, Y: 2}, {X: 12, Y: 2}, {X: 12, Y: 12}}, elbow)
	assert.Equal(t, Point{X: 7, Y: 7}, Midpoint(elbow))
	assert.Equal(t, Point{}, Midpoint(nil))
}
