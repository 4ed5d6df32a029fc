package event

import "strings"

// Channel names an event stream using dot notation.
// Examples: "stack.shape.move.execute", "elements.changed".
type Channel string

// Separator separates channel segments.
const Separator = "."

// String returns the channel as a string.
func (c Channel) String() string {
	return string(c)
}

// Segments returns the channel split by the separator.
func (c Channel) Segments() []string {
	if c == "" {
		return nil
	}
	return strings.Split(string(c), Separator)
}

// Child returns a channel with segment appended.
//
// Example: Channel("stack").Child("changed") -> "stack.changed"
func (c Channel) Child(segment string) Channel {
	if c == "" {
		return Channel(segment)
	}
	if segment == "" {
		return c
	}
	return Channel(string(c) + Separator + segment)
}

// Base returns the last segment of the channel.
func (c Channel) Base() string {
	s := string(c)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsValid reports whether the channel is non-empty and has no empty segments.
func (c Channel) IsValid() bool {
	if c == "" {
		return false
	}
	for _, seg := range c.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Join joins non-empty segments into a channel.
func Join(segments ...string) Channel {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Channel(strings.Join(parts, Separator))
}
