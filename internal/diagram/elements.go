package diagram

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/drafter/internal/command"
)

// Kind classifies canvas elements.
type Kind string

const (
	KindShape      Kind = "shape"
	KindConnection Kind = "connection"
	KindLabel      Kind = "label"
)

// Element is anything placed on the canvas.
type Element interface {
	command.Element
	Kind() Kind
}

// NewID returns a fresh element ID for kind.
func NewID(kind Kind) string {
	return string(kind) + "_" + uuid.NewString()
}

// Shape is a box on the canvas.
type Shape struct {
	ID      string
	Type    string
	Bounds  Bounds
	LabelID string
}

// ElementID implements command.Element.
func (s *Shape) ElementID() string { return s.ID }

// Kind implements Element.
func (s *Shape) Kind() Kind { return KindShape }

// Clone returns a copy of s.
func (s *Shape) Clone() *Shape {
	c := *s
	return &c
}

// Connection links two shapes.
type Connection struct {
	ID        string
	SourceID  string
	TargetID  string
	Waypoints []Point
	LabelID   string
}

// ElementID implements command.Element.
func (c *Connection) ElementID() string { return c.ID }

// Kind implements Element.
func (c *Connection) Kind() Kind { return KindConnection }

// Clone returns a deep copy of c.
func (c *Connection) Clone() *Connection {
	n := *c
	n.Waypoints = slices.Clone(c.Waypoints)
	return &n
}

// Connects reports whether c is attached to the element with id.
func (c *Connection) Connects(id string) bool {
	return c.SourceID == id || c.TargetID == id
}

// Label is text attached to a shape or connection.
type Label struct {
	ID       string
	OwnerID  string
	Text     string
	Position Point
}

// ElementID implements command.Element.
func (l *Label) ElementID() string { return l.ID }

// Kind implements Element.
func (l *Label) Kind() Kind { return KindLabel }

// Clone returns a copy of l.
func (l *Label) Clone() *Label {
	c := *l
	return &c
}

// labelled is implemented by elements that can carry a label.
type labelled interface {
	Element
	labelID() string
	setLabelID(id string)
	labelAnchor() Point
}

func (s *Shape) labelID() string { return s.LabelID }

func (s *Shape) setLabelID(id string) { s.LabelID = id }

func (s *Shape) labelAnchor() Point {
	return Point{X: s.Bounds.X, Y: s.Bounds.Y + s.Bounds.Height}
}

func (c *Connection) labelID() string { return c.LabelID }

func (c *Connection) setLabelID(id string) { c.LabelID = id }

func (c *Connection) labelAnchor() Point { return Midpoint(c.Waypoints) }
