package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopListener() Listener {
	return ListenerFunc(func(*Event) error { return nil })
}

func TestRegistry_AddAndCount(t *testing.T) {
	r := NewRegistry()

	r.add("a", noopListener())
	r.add("a", noopListener())
	r.add("b", noopListener())

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, 2, r.CountByChannel("a"))
	assert.Equal(t, []Channel{"a", "b"}, r.Channels())
}

func TestRegistry_OrderingIsStable(t *testing.T) {
	r := NewRegistry()

	first := r.add("x", noopListener(), WithPriority(1000))
	high := r.add("x", noopListener(), WithPriority(1200))
	second := r.add("x", noopListener(), WithPriority(1000))
	low := r.add("x", noopListener(), WithPriority(10))

	subs := r.Match("x")
	require.Len(t, subs, 4)
	assert.Equal(t, []string{high.ID(), first.ID(), second.ID(), low.ID()},
		[]string{subs[0].ID(), subs[1].ID(), subs[2].ID(), subs[3].ID()})
}

func TestRegistry_RemoveKeepsSnapshots(t *testing.T) {
	r := NewRegistry()
	a := r.add("x", noopListener())
	b := r.add("x", noopListener())

	snapshot := r.Match("x")
	require.True(t, r.Remove(a.ID()))

	assert.Len(t, snapshot, 2)
	assert.Equal(t, a.ID(), snapshot[0].ID())
	assert.Equal(t, 1, r.CountByChannel("x"))

	require.True(t, r.Remove(b.ID()))
	assert.Empty(t, r.Channels())
	assert.False(t, r.Remove(b.ID()))
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	a := r.add("x", noopListener())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Equal(t, Channel("x"), got.Channel())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	a := r.add("x", noopListener())

	r.Clear()

	assert.Equal(t, 0, r.Count())
	assert.Equal(t, SubscriptionStateCancelled, a.State())
	assert.Nil(t, r.Match("x"))
}

func TestSubscriptionState_String(t *testing.T) {
	assert.Equal(t, "active", SubscriptionStateActive.String())
	assert.Equal(t, "paused", SubscriptionStatePaused.String())
	assert.Equal(t, "cancelled", SubscriptionStateCancelled.String())
	assert.Equal(t, "unknown", SubscriptionState(99).String())
}
