package diagram

import (
	"fmt"
	"sync"
)

// Canvas holds the elements of one diagram in insertion order.
type Canvas struct {
	mu       sync.RWMutex
	elements map[string]Element
	order    []string
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		elements: make(map[string]Element),
	}
}

// Add appends el.
func (c *Canvas) Add(el Element) error {
	return c.Insert(el, -1)
}

// Insert places el at index in the element order. A negative or out of
// range index appends.
func (c *Canvas) Insert(el Element, index int) error {
	if el == nil || el.ElementID() == "" {
		return ErrInvalidElement
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := el.ElementID()
	if _, exists := c.elements[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	c.elements[id] = el

	if index < 0 || index >= len(c.order) {
		c.order = append(c.order, id)
		return nil
	}
	c.order = append(c.order, "")
	copy(c.order[index+1:], c.order[index:])
	c.order[index] = id
	return nil
}

// Remove deletes the element with id and returns it with its former index.
func (c *Canvas) Remove(id string) (Element, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.elements[id]
	if !ok {
		return nil, -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(c.elements, id)

	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return el, i, nil
		}
	}
	return el, -1, nil
}

// Get returns the element with id.
func (c *Canvas) Get(id string) (Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	el, ok := c.elements[id]
	return el, ok
}

// Has reports whether id is on the canvas.
func (c *Canvas) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Shape returns the shape with id.
func (c *Canvas) Shape(id string) (*Shape, error) {
	return lookup[*Shape](c, id, KindShape)
}

// Connection returns the connection with id.
func (c *Canvas) Connection(id string) (*Connection, error) {
	return lookup[*Connection](c, id, KindConnection)
}

// Label returns the label with id.
func (c *Canvas) Label(id string) (*Label, error) {
	return lookup[*Label](c, id, KindLabel)
}

func lookup[T Element](c *Canvas, id string, kind Kind) (T, error) {
	var zero T
	el, ok := c.Get(id)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	v, ok := el.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is a %s, not a %s", ErrWrongKind, id, el.Kind(), kind)
	}
	return v, nil
}

// labelOwner returns the shape or connection with id.
func (c *Canvas) labelOwner(id string) (labelled, error) {
	el, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	owner, ok := el.(labelled)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot carry a label", ErrWrongKind, id)
	}
	return owner, nil
}

// Elements returns all elements in order.
func (c *Canvas) Elements() []Element {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Element, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.elements[id])
	}
	return result
}

// Shapes returns all shapes in order.
func (c *Canvas) Shapes() []*Shape {
	return collect[*Shape](c)
}

// Connections returns all connections in order.
func (c *Canvas) Connections() []*Connection {
	return collect[*Connection](c)
}

// Labels returns all labels in order.
func (c *Canvas) Labels() []*Label {
	return collect[*Label](c)
}

func collect[T Element](c *Canvas) []T {
	var result []T
	for _, el := range c.Elements() {
		if v, ok := el.(T); ok {
			result = append(result, v)
		}
	}
	return result
}

// ConnectionsOf returns the connections attached to the shape with id.
func (c *Canvas) ConnectionsOf(id string) []*Connection {
	var result []*Connection
	for _, conn := range c.Connections() {
		if conn.Connects(id) {
			result = append(result, conn)
		}
	}
	return result
}

// ShapeAt returns the topmost shape containing p.
func (c *Canvas) ShapeAt(p Point) (*Shape, bool) {
	shapes := c.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Bounds.Contains(p) {
			return shapes[i], true
		}
	}
	return nil, false
}

// Len returns the number of elements.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.elements)
}
