package event

import (
	"sort"
	"sync"
)

// Registry keeps subscriptions per channel in delivery order.
// It is safe for concurrent access.
type Registry struct {
	mu   sync.RWMutex
	subs map[Channel][]*subscription
	byID map[string]*subscription
	seq  uint64
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[Channel][]*subscription),
		byID: make(map[string]*subscription),
	}
}

// add creates and stores a subscription.
// Subscriptions are kept sorted by descending priority; equal priorities
// keep registration order.
func (r *Registry) add(ch Channel, l Listener, opts ...SubscriptionOption) *subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	sub := newSubscription(ch, l, r.seq, opts...)

	subs := append(r.subs[ch], sub)
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Priority() != subs[j].Priority() {
			return subs[i].Priority() > subs[j].Priority()
		}
		return subs[i].seq < subs[j].seq
	})
	r.subs[ch] = subs
	r.byID[sub.ID()] = sub

	return sub
}

// Remove removes a subscription by ID.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.byID[subID]
	if !exists {
		return false
	}

	subs := r.subs[sub.channel]
	for i, s := range subs {
		if s.id == subID {
			// Copy so snapshots handed out by Match stay intact.
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			r.subs[sub.channel] = next
			break
		}
	}
	if len(r.subs[sub.channel]) == 0 {
		delete(r.subs, sub.channel)
	}
	delete(r.byID, subID)

	return true
}

// Get returns a subscription by ID.
func (r *Registry) Get(subID string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[subID]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Match returns a snapshot of the subscriptions of ch in delivery order.
func (r *Registry) Match(ch Channel) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subs[ch]
	if len(subs) == 0 {
		return nil
	}
	result := make([]*subscription, len(subs))
	copy(result, subs)
	return result
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// CountByChannel returns the number of subscriptions on ch.
func (r *Registry) CountByChannel(ch Channel) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[ch])
}

// Channels returns every channel with at least one subscription, sorted.
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]Channel, 0, len(r.subs))
	for ch := range r.subs {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.byID {
		sub.Cancel()
	}
	r.subs = make(map[Channel][]*subscription)
	r.byID = make(map[string]*subscription)
}
