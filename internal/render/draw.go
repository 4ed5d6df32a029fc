package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/drafter/internal/diagram"
)

func (r *Renderer) toScreen(p diagram.Point) diagram.Point {
	return p.Sub(r.origin)
}

// set draws one cell, ignoring positions outside the drawing area. The last
// row is reserved for the status line.
func (r *Renderer) set(x, y int, ch rune, style tcell.Style) {
	w, h := r.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	r.screen.SetContent(x, y, ch, nil, style)
}

func (r *Renderer) drawShape(s *diagram.Shape, style tcell.Style) {
	p := r.toScreen(s.Bounds.Origin())
	w, h := s.Bounds.Width, s.Bounds.Height
	if w <= 0 || h <= 0 {
		return
	}
	if w < 2 || h < 2 {
		for y := p.Y; y < p.Y+h; y++ {
			for x := p.X; x < p.X+w; x++ {
				r.set(x, y, tcell.RuneBlock, style)
			}
		}
		return
	}

	right, bottom := p.X+w-1, p.Y+h-1
	for y := p.Y + 1; y < bottom; y++ {
		for x := p.X + 1; x < right; x++ {
			r.set(x, y, ' ', r.theme.Background)
		}
		r.set(p.X, y, tcell.RuneVLine, style)
		r.set(right, y, tcell.RuneVLine, style)
	}
	for x := p.X + 1; x < right; x++ {
		r.set(x, p.Y, tcell.RuneHLine, style)
		r.set(x, bottom, tcell.RuneHLine, style)
	}
	r.set(p.X, p.Y, tcell.RuneULCorner, style)
	r.set(right, p.Y, tcell.RuneURCorner, style)
	r.set(p.X, bottom, tcell.RuneLLCorner, style)
	r.set(right, bottom, tcell.RuneLRCorner, style)

	if h > 2 && w > 2 {
		name := []rune(s.Type)
		if len(name) > w-2 {
			name = name[:w-2]
		}
		r.drawText(diagram.Point{X: p.X + 1, Y: p.Y + 1}, string(name), style)
	}
}

// drawConnection draws the segments between waypoints. Shapes are drawn
// afterwards and cover the ends inside them.
func (r *Renderer) drawConnection(c *diagram.Connection) {
	for i := 1; i < len(c.Waypoints); i++ {
		r.drawSegment(r.toScreen(c.Waypoints[i-1]), r.toScreen(c.Waypoints[i]))
	}
	for i := 1; i < len(c.Waypoints)-1; i++ {
		p := r.toScreen(c.Waypoints[i])
		r.set(p.X, p.Y, tcell.RunePlus, r.theme.Connection)
	}
}

// drawSegment walks horizontally first, then vertically.
func (r *Renderer) drawSegment(a, b diagram.Point) {
	style := r.theme.Connection
	for x := a.X; x != b.X; x += sign(b.X - a.X) {
		r.set(x, a.Y, tcell.RuneHLine, style)
	}
	for y := a.Y; y != b.Y; y += sign(b.Y - a.Y) {
		r.set(b.X, y, tcell.RuneVLine, style)
	}
	if a.X != b.X && a.Y != b.Y {
		r.set(b.X, a.Y, tcell.RunePlus, style)
	}
}

func (r *Renderer) drawText(p diagram.Point, text string, style tcell.Style) {
	x := p.X
	for _, ch := range text {
		r.set(x, p.Y, ch, style)
		x++
	}
}

func (r *Renderer) drawStatus() {
	w, h := r.screen.Size()
	if h == 0 {
		return
	}
	y := h - 1
	text := []rune(r.status)
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(text) {
			ch = text[x]
		}
		r.screen.SetContent(x, y, ch, nil, r.theme.Status)
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
