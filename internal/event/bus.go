package event

import (
	"errors"
	"sync/atomic"
)

// Bus is a synchronous, priority-ordered event dispatcher.
// Subscription management is safe for concurrent use; firing is expected to
// happen on the goroutine that owns the editor.
type Bus struct {
	registry *Registry
	config   busConfig

	eventsFired      atomic.Uint64
	listenersInvoked atomic.Uint64
	listenerErrors   atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{
		registry: NewRegistry(),
		config:   config,
	}
}

// On registers listener on ch.
func (b *Bus) On(ch Channel, listener Listener, opts ...SubscriptionOption) (Subscription, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	if !ch.IsValid() {
		return nil, ErrInvalidChannel
	}
	return b.registry.add(ch, listener, opts...), nil
}

// OnFunc is a convenience method for subscribing with a function.
func (b *Bus) OnFunc(ch Channel, fn ListenerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	return b.On(ch, fn, opts...)
}

// Once registers a listener that is removed after its first delivery.
func (b *Bus) Once(ch Channel, listener Listener, opts ...SubscriptionOption) (Subscription, error) {
	return b.On(ch, listener, append(opts, WithOnce())...)
}

// Off removes a subscription.
func (b *Bus) Off(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.Remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Fire delivers payload on ch and returns the result.
func (b *Bus) Fire(ch Channel, payload any) (Result, error) {
	return b.FireEvent(ch, NewEvent(payload))
}

// FireEvent delivers an existing event on ch.
//
// Listeners are skipped entirely if propagation was already stopped, which
// lets callers chain channels and honour a stop from an earlier one.
func (b *Bus) FireEvent(ch Channel, e *Event) (Result, error) {
	if e == nil {
		return Result{}, ErrNilEvent
	}
	if !ch.IsValid() {
		return Result{}, ErrInvalidChannel
	}

	b.eventsFired.Add(1)
	e.Channel = ch

	for _, sub := range b.registry.Match(ch) {
		if e.Stopped() {
			break
		}
		if !sub.shouldDeliver(e) {
			continue
		}

		if sub.config.Once {
			sub.Cancel()
			b.registry.Remove(sub.id)
		}

		b.listenersInvoked.Add(1)
		if err := sub.listener.Handle(e); err != nil {
			b.listenerErrors.Add(1)
			return e.Result(), b.wrapError(sub, ch, err)
		}
	}

	return e.Result(), nil
}

// wrapError attaches channel context to a listener error.
// Errors already carrying listener context pass through unchanged.
func (b *Bus) wrapError(sub *subscription, ch Channel, err error) error {
	if b.config.errorHook != nil {
		b.config.errorHook(ch, err)
	}
	b.config.logger.WithComponent("event").Debug("listener on %s failed: %v", ch, err)

	var le *ListenerError
	if errors.As(err, &le) {
		return err
	}
	return &ListenerError{SubscriptionID: sub.id, Channel: ch, Err: err}
}

// HasListeners reports whether ch has at least one subscription.
func (b *Bus) HasListeners(ch Channel) bool {
	return b.registry.CountByChannel(ch) > 0
}

// Registry exposes the subscription registry for inspection.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsFired:      b.eventsFired.Load(),
		ListenersInvoked: b.listenersInvoked.Load(),
		ListenerErrors:   b.listenerErrors.Load(),
		Subscriptions:    b.registry.Count(),
	}
}
