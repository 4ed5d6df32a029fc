package event

import "github.com/dshills/drafter/internal/log"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// logger receives listener failures at debug level.
	logger *log.Logger

	// errorHook is called for every listener error before it is returned.
	errorHook func(ch Channel, err error)
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger: log.NullLogger,
	}
}

// WithLogger sets the logger used by the bus.
func WithLogger(l *log.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHook sets a callback invoked for every listener error.
func WithErrorHook(fn func(ch Channel, err error)) BusOption {
	return func(c *busConfig) {
		c.errorHook = fn
	}
}
