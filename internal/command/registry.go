package command

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names to their single handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds the handler for command.
// A command can only be registered once.
func (r *Registry) Register(command string, h Handler) error {
	if command == "" || h == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[command]; exists {
		return fmt.Errorf("%w <%s>", ErrHandlerExists, command)
	}
	r.handlers[command] = h
	return nil
}

// Get returns the handler for command, or nil.
func (r *Registry) Get(command string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[command]
}

// Has returns true if a handler is registered for command.
func (r *Registry) Has(command string) bool {
	return r.Get(command) != nil
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
