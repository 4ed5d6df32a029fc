package diagram

import "errors"

var (
	// ErrNotFound indicates an unknown element ID.
	ErrNotFound = errors.New("diagram: element not found")

	// ErrDuplicateID indicates an element ID already on the canvas.
	ErrDuplicateID = errors.New("diagram: duplicate element id")

	// ErrWrongKind indicates an element of another kind than expected.
	ErrWrongKind = errors.New("diagram: wrong element kind")

	// ErrInvalidElement indicates a missing or malformed element.
	ErrInvalidElement = errors.New("diagram: invalid element")

	// ErrLabelExists indicates an element that already carries a label.
	ErrLabelExists = errors.New("diagram: element already labelled")

	// ErrNotAllowed indicates a command denied by a rule.
	ErrNotAllowed = errors.New("diagram: not allowed")
)
