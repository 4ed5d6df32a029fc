package command

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var propertyKeys = []string{"a", "b", "c"}

func snapshot(m *counters) map[string]int {
	out := make(map[string]int, len(propertyKeys))
	for _, k := range propertyKeys {
		out[k] = m.values[k]
	}
	return out
}

// TestStack_HistoryMatchesModel drives random execute/undo/redo sequences and
// compares the stack against a list of snapshots with a cursor.
func TestStack_HistoryMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New(nil)
		m := newCounters()
		require.NoError(rt, s.Register("add", addHandler(m)))

		history := []map[string]int{snapshot(m)}
		cursor := 0

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				key := rapid.SampledFrom(propertyKeys).Draw(rt, "key")
				delta := rapid.IntRange(-5, 5).Draw(rt, "delta")
				require.NoError(rt, s.Execute("add", &addCtx{Key: key, Delta: delta}))

				next := maps.Clone(history[cursor])
				next[key] += delta
				history = append(history[:cursor+1], next)
				cursor++
			case 1:
				require.NoError(rt, s.Undo())
				if cursor > 0 {
					cursor--
				}
			case 2:
				require.NoError(rt, s.Redo())
				if cursor < len(history)-1 {
					cursor++
				}
			}

			require.Equal(rt, history[cursor], snapshot(m))
			require.Equal(rt, cursor-1, s.Index())
			require.Equal(rt, len(history)-1, s.Len())
			require.Equal(rt, cursor > 0, s.CanUndo())
			require.Equal(rt, cursor < len(history)-1, s.CanRedo())
		}

		for s.CanUndo() {
			require.NoError(rt, s.Undo())
		}
		require.Equal(rt, history[0], snapshot(m), "undoing everything restores the initial state")
	})
}

// TestStack_ExecuteUndoIsIdentity checks that one execute followed by one
// undo leaves the model unchanged, whatever was composed into the step.
func TestStack_ExecuteUndoIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New(nil)
		m := newCounters()
		require.NoError(rt, s.Register("add", addHandler(m)))

		extra := rapid.SliceOfN(rapid.SampledFrom(propertyKeys), 0, 5).Draw(rt, "extra")
		h := &hookHandler{Handler: addHandler(m)}
		h.post = func(ctx Context) error {
			for _, k := range extra {
				if err := s.Execute("add", &addCtx{Key: k, Delta: 1}); err != nil {
					return err
				}
			}
			return nil
		}
		require.NoError(rt, s.Register("compound", h))

		for _, k := range propertyKeys {
			m.values[k] = rapid.IntRange(-10, 10).Draw(rt, "init_"+k)
		}
		before := snapshot(m)

		key := rapid.SampledFrom(propertyKeys).Draw(rt, "key")
		require.NoError(rt, s.Execute("compound", &addCtx{Key: key, Delta: 3}))
		require.NoError(rt, s.Undo())
		require.Equal(rt, before, snapshot(m))
		require.False(rt, s.CanUndo())

		require.NoError(rt, s.Redo())
		require.False(rt, s.CanRedo(), "redo re-applies the whole step at once")
	})
}
