package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(order *[]string, name string) ListenerFunc {
	return func(e *Event) error {
		*order = append(*order, name)
		return nil
	}
}

func TestBus_On_Validation(t *testing.T) {
	b := NewBus()

	_, err := b.On("test", nil)
	require.ErrorIs(t, err, ErrNilListener)

	_, err = b.On("", ListenerFunc(func(*Event) error { return nil }))
	require.ErrorIs(t, err, ErrInvalidChannel)

	_, err = b.On("a..b", ListenerFunc(func(*Event) error { return nil }))
	require.ErrorIs(t, err, ErrInvalidChannel)
}

func TestBus_Fire_PriorityOrder(t *testing.T) {
	b := NewBus()
	var order []string

	_, err := b.On("test", recorder(&order, "low"), WithPriority(PriorityLow))
	require.NoError(t, err)
	_, err = b.On("test", recorder(&order, "default-1"))
	require.NoError(t, err)
	_, err = b.On("test", recorder(&order, "high"), WithPriority(PriorityHigh))
	require.NoError(t, err)
	_, err = b.On("test", recorder(&order, "default-2"))
	require.NoError(t, err)

	res, err := b.Fire("test", nil)
	require.NoError(t, err)
	assert.False(t, res.Defined)
	assert.Equal(t, []string{"high", "default-1", "default-2", "low"}, order)
}

func TestBus_Fire_NoListeners(t *testing.T) {
	b := NewBus()

	res, err := b.Fire("nobody.listens", 42)
	require.NoError(t, err)
	assert.False(t, res.Defined)
	assert.Equal(t, uint64(1), b.Stats().EventsFired)
}

func TestBus_Fire_StopPropagation(t *testing.T) {
	b := NewBus()
	var order []string

	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		order = append(order, "first")
		e.StopPropagation()
		return nil
	}), WithPriority(2000))
	_, _ = b.On("test", recorder(&order, "second"))

	res, err := b.Fire("test", nil)
	require.NoError(t, err)
	assert.False(t, res.Defined)
	assert.Equal(t, []string{"first"}, order)
}

func TestBus_Fire_ReturnValues(t *testing.T) {
	tests := []struct {
		name    string
		ret     any
		defined bool
		value   any
	}{
		{"false", false, true, false},
		{"true", true, true, true},
		{"nil", nil, true, nil},
		{"string", "x", true, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBus()
			called := false
			_, _ = b.On("test", ListenerFunc(func(e *Event) error {
				e.Return(tt.ret)
				return nil
			}), WithPriority(2000))
			_, _ = b.On("test", ListenerFunc(func(e *Event) error {
				called = true
				return nil
			}))

			res, err := b.Fire("test", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.defined, res.Defined)
			assert.Equal(t, tt.value, res.Value)
			assert.False(t, called, "return must stop propagation")
		})
	}
}

func TestBus_Fire_NilIsDistinctFromUndefined(t *testing.T) {
	b := NewBus()
	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		e.Return(nil)
		return nil
	}))

	res, err := b.Fire("test", nil)
	require.NoError(t, err)
	assert.True(t, res.IsNil())

	_, ok := res.Bool()
	assert.False(t, ok)
}

func TestBus_Fire_PreventDefaultYieldsFalse(t *testing.T) {
	b := NewBus()
	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		e.PreventDefault()
		return nil
	}))

	res, err := b.Fire("test", nil)
	require.NoError(t, err)
	v, ok := res.Bool()
	assert.True(t, ok)
	assert.False(t, v)
}

func TestBus_Fire_ListenerError(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	var hooked error
	b = NewBus(WithErrorHook(func(ch Channel, err error) { hooked = err }))

	var order []string
	_, _ = b.On("test", ListenerFunc(func(e *Event) error { return boom }), WithPriority(2000))
	_, _ = b.On("test", recorder(&order, "after"))

	_, err := b.Fire("test", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, boom, hooked)

	var le *ListenerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Channel("test"), le.Channel)
	assert.Empty(t, order, "error aborts the fire")
	assert.Equal(t, uint64(1), b.Stats().ListenerErrors)
}

func TestBus_Fire_NestedErrorNotRewrapped(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	_, _ = b.On("inner", ListenerFunc(func(e *Event) error { return boom }))
	_, _ = b.On("outer", ListenerFunc(func(e *Event) error {
		_, err := b.Fire("inner", nil)
		return err
	}))

	_, err := b.Fire("outer", nil)
	var le *ListenerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Channel("inner"), le.Channel)
	assert.ErrorIs(t, err, boom)
}

func TestBus_FireEvent_SharedAcrossChannels(t *testing.T) {
	b := NewBus()
	var order []string

	_, _ = b.On("specific", ListenerFunc(func(e *Event) error {
		order = append(order, "specific")
		e.StopPropagation()
		return nil
	}))
	_, _ = b.On("generic", recorder(&order, "generic"))

	e := NewEvent("payload")
	_, err := b.FireEvent("specific", e)
	require.NoError(t, err)
	_, err = b.FireEvent("generic", e)
	require.NoError(t, err)

	assert.Equal(t, []string{"specific"}, order)

	_, err = b.FireEvent("generic", nil)
	assert.ErrorIs(t, err, ErrNilEvent)
}

func TestBus_Once(t *testing.T) {
	b := NewBus()
	count := 0
	_, err := b.Once("test", ListenerFunc(func(e *Event) error {
		count++
		return nil
	}))
	require.NoError(t, err)

	_, _ = b.Fire("test", nil)
	_, _ = b.Fire("test", nil)

	assert.Equal(t, 1, count)
	assert.False(t, b.HasListeners("test"))
}

func TestBus_Filter(t *testing.T) {
	b := NewBus()
	var got []any
	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		got = append(got, e.Payload)
		return nil
	}), WithFilter(func(e *Event) bool { return e.Payload != "skip" }))

	_, _ = b.Fire("test", "keep")
	_, _ = b.Fire("test", "skip")

	assert.Equal(t, []any{"keep"}, got)
}

func TestBus_Off(t *testing.T) {
	b := NewBus()
	count := 0
	sub, _ := b.On("test", ListenerFunc(func(e *Event) error {
		count++
		return nil
	}))

	require.NoError(t, b.Off(sub))
	_, _ = b.Fire("test", nil)
	assert.Equal(t, 0, count)
	assert.Equal(t, SubscriptionStateCancelled, sub.State())

	assert.ErrorIs(t, b.Off(sub), ErrSubscriptionNotFound)
	assert.ErrorIs(t, b.Off(nil), ErrInvalidSubscription)
}

func TestBus_PauseResume(t *testing.T) {
	b := NewBus()
	count := 0
	sub, _ := b.On("test", ListenerFunc(func(e *Event) error {
		count++
		return nil
	}))

	sub.Pause()
	_, _ = b.Fire("test", nil)
	sub.Resume()
	_, _ = b.Fire("test", nil)

	assert.Equal(t, 1, count)
}

func TestBus_SubscribeDuringFire(t *testing.T) {
	b := NewBus()
	var order []string

	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		order = append(order, "first")
		_, err := b.On("test", recorder(&order, "late"), WithPriority(PriorityLowest))
		return err
	}))

	_, err := b.Fire("test", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, order, "snapshot excludes listeners added mid-fire")

	order = nil
	_, _ = b.Fire("test", nil)
	assert.Equal(t, []string{"first", "late"}, order)
}

func TestBus_UnsubscribeDuringFire(t *testing.T) {
	b := NewBus()
	var order []string
	var second Subscription

	_, _ = b.On("test", ListenerFunc(func(e *Event) error {
		order = append(order, "first")
		return b.Off(second)
	}), WithPriority(2000))
	second, _ = b.On("test", recorder(&order, "second"))

	_, err := b.Fire("test", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, order, "cancelled listeners are skipped")
}

func TestBus_ReentrantFire(t *testing.T) {
	b := NewBus()
	var order []string

	_, _ = b.On("outer", ListenerFunc(func(e *Event) error {
		order = append(order, "outer")
		_, err := b.Fire("inner", nil)
		order = append(order, "outer-after")
		return err
	}))
	_, _ = b.On("inner", recorder(&order, "inner"))

	_, err := b.Fire("outer", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "outer-after"}, order)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, Channel("stack.shape.move.execute"), Join("stack", "shape.move", "execute"))
	assert.Equal(t, Channel("stack.execute"), Join("stack", "", "execute"))
	assert.Equal(t, Channel("stack.changed"), Channel("stack").Child("changed"))
	assert.Equal(t, "execute", Channel("stack.shape.move.execute").Base())
	assert.Equal(t, []string{"a", "b"}, Channel("a.b").Segments())
	assert.True(t, Channel("a.b").IsValid())
	assert.False(t, Channel(".a").IsValid())
	assert.False(t, Channel("").IsValid())
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "default", DefaultPriority.String())
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "lowest", PriorityLowest.String())
	assert.Equal(t, "highest", PriorityHighest.String())
}
