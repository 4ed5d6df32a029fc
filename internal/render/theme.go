package render

import "github.com/gdamore/tcell/v2"

// Theme holds the styles used to draw a diagram.
type Theme struct {
	Background tcell.Style
	Shape      tcell.Style
	Selected   tcell.Style
	Connection tcell.Style
	Label      tcell.Style
	Status     tcell.Style
}

// DefaultTheme returns the default theme.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Background: base,
		Shape:      base.Foreground(tcell.ColorWhite),
		Selected:   base.Foreground(tcell.ColorYellow).Bold(true),
		Connection: base.Foreground(tcell.ColorTeal),
		Label:      base.Foreground(tcell.ColorSilver).Italic(true),
		Status:     base.Reverse(true),
	}
}
