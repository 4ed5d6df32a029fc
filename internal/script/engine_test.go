package script

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/log"
)

func setupEngine(t *testing.T, opts ...Option) (*Engine, *diagram.Modeling) {
	t.Helper()
	s := command.New(nil)
	m, err := diagram.New(s, diagram.NewCanvas())
	require.NoError(t, err)

	e := New(m, opts...)
	t.Cleanup(func() {
		_ = e.Close()
		_ = m.Close()
	})
	return e, m
}

func TestEngine_CreatesThroughModeling(t *testing.T) {
	e, m := setupEngine(t)

	err := e.LoadString("init", `
		local a = drafter.create("task", 0, 0, 10, 4, "A")
		local b = drafter.create("task", 20, 0, 10, 4)
		drafter.connect(a, b, "flow")
		local s = drafter.shape(a)
		assert(s.width == 10 and s.label == "A")
		assert(#drafter.shapes() == 2)
		assert(#drafter.connections() == 1)
		assert(drafter.shape("missing") == nil)
	`)
	require.NoError(t, err)

	assert.Len(t, m.Canvas().Shapes(), 2)
	assert.Len(t, m.Canvas().Connections(), 1)
	assert.Len(t, m.Canvas().Labels(), 2)
}

func TestEngine_CanExecuteResults(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		moved   bool
	}{
		{"false denies", "return false", diagram.ErrNotAllowed, false},
		{"nil ignores", "return nil", nil, false},
		{"true allows", "return true", nil, true},
		{"nothing falls through", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := setupEngine(t)
			shape, err := m.CreateShape("task", diagram.Bounds{Width: 10, Height: 4}, "")
			require.NoError(t, err)

			require.NoError(t, e.LoadString("rules", `
				drafter.on("shape.move", "canExecute", function(evt) `+tt.body+` end)
			`))

			err = m.MoveShape(shape.ID, diagram.Point{X: 3})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.moved, shape.Bounds.X == 3)
		})
	}
}

func TestEngine_ComposesIntoSameStep(t *testing.T) {
	e, m := setupEngine(t)
	shape, err := m.CreateShape("task", diagram.Bounds{Width: 10, Height: 4}, "")
	require.NoError(t, err)

	require.NoError(t, e.LoadString("behaviors", `
		drafter.on({"shape.move"}, "postExecute", function(evt)
			drafter.label(evt.shape, "moved #" .. evt.id)
		end)
	`))

	require.NoError(t, m.MoveShape(shape.ID, diagram.Point{X: 1}))
	require.NotEmpty(t, shape.LabelID)
	label, err := m.Canvas().Label(shape.LabelID)
	require.NoError(t, err)
	assert.Equal(t, "moved #2", label.Text)

	require.NoError(t, m.Stack().Undo())
	assert.Equal(t, 0, shape.Bounds.X)
	assert.Empty(t, shape.LabelID)
	assert.Empty(t, m.Canvas().Labels())
}

func TestEngine_AtomicPhaseRejectsCommands(t *testing.T) {
	e, m := setupEngine(t)
	shape, err := m.CreateShape("task", diagram.Bounds{Width: 10, Height: 4}, "")
	require.NoError(t, err)

	require.NoError(t, e.LoadString("bad", `
		drafter.on("shape.move", "executed", function(evt)
			drafter.move(evt.shape, 1, 1)
		end)
	`))

	err = m.MoveShape(shape.ID, diagram.Point{X: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal invocation")

	var se *ScriptError
	assert.ErrorAs(t, err, &se)
	assert.False(t, m.Stack().InFlight())
}

func TestEngine_StopPropagation(t *testing.T) {
	e, m := setupEngine(t)
	shape, err := m.CreateShape("task", diagram.Bounds{Width: 10, Height: 4}, "")
	require.NoError(t, err)

	require.NoError(t, e.LoadString("stop", `
		generic = 0
		drafter.on("shape.move", "preExecute", function(evt) evt.stop() end)
		drafter.on(nil, "preExecute", function(evt) generic = generic + 1 end)
	`))
	require.Equal(t, 2, e.Listeners())

	require.NoError(t, m.MoveShape(shape.ID, diagram.Point{X: 1}))
	require.NoError(t, e.Exec("check", `assert(generic == 0, "generic listener ran")`))
}

func TestEngine_LoadReplacesListeners(t *testing.T) {
	e, m := setupEngine(t)
	registry := m.Stack().Bus().Registry()
	base := registry.Count()

	require.NoError(t, e.LoadString("one", `
		drafter.on("shape.move", "preExecute", 2000, function() end)
		drafter.on({"shape.create", "shape.delete"}, "postExecute", function() end)
	`))
	assert.Equal(t, 2, e.Listeners())
	assert.Equal(t, base+3, registry.Count())

	require.NoError(t, e.LoadString("two", `x = 1`))
	assert.Equal(t, 0, e.Listeners())
	assert.Equal(t, base, registry.Count())
	assert.Equal(t, "two", e.Source())
}

func TestEngine_ReloadRereadsFile(t *testing.T) {
	e, m := setupEngine(t)
	require.ErrorIs(t, e.Reload(), ErrNoScript)

	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(`drafter.create("task", 0, 0, 4, 4)`), 0o600))
	require.NoError(t, e.Load(path))
	assert.Equal(t, path, e.Source())
	assert.Len(t, m.Canvas().Shapes(), 1)

	require.NoError(t, os.WriteFile(path, []byte(`drafter.create("task", 10, 0, 4, 4, "second")`), 0o600))
	require.NoError(t, e.Reload())
	assert.Len(t, m.Canvas().Shapes(), 2)
	assert.Len(t, m.Canvas().Labels(), 1)

	err := e.Load(filepath.Join(t.TempDir(), "missing.lua"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEngine_ScriptErrors(t *testing.T) {
	e, _ := setupEngine(t)

	err := e.LoadString("broken", `this is not lua`)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "broken", se.Source)

	err = e.LoadString("runtime", `drafter.move("nope", 1, 1)`)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "not allowed: shape.move")

	err = e.LoadString("delete", `drafter.delete("nope")`)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "not found: nope")

	err = e.LoadString("phase", `drafter.on("shape.move", "sometime", function() end)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown phase")

	err = e.LoadString("commands", `drafter.on(42, "execute", function() end)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "string, table or nil expected")
}

func TestEngine_Timeout(t *testing.T) {
	e, m := setupEngine(t, WithTimeout(50*time.Millisecond))

	err := e.LoadString("spin", `while true do end`)
	require.ErrorIs(t, err, ErrTimeout)

	shape, err := m.CreateShape("task", diagram.Bounds{Width: 4, Height: 4}, "")
	require.NoError(t, err)
	require.NoError(t, e.LoadString("slow", `
		drafter.on("shape.move", "preExecute", function() while true do end end)
	`))
	err = m.MoveShape(shape.ID, diagram.Point{X: 1})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 0, shape.Bounds.X)
	assert.False(t, m.Stack().InFlight())
}

func TestEngine_Sandbox(t *testing.T) {
	e, _ := setupEngine(t)

	for _, name := range []string{"io", "os", "require", "dofile", "loadfile", "load", "loadstring"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, e.Exec("sandbox", `assert(`+name+` == nil)`))
		})
	}
	require.NoError(t, e.Exec("libs", `
		assert(string.upper("a") == "A")
		assert(math.max(1, 2) == 2)
		assert(table.concat({"a", "b"}, ",") == "a,b")
	`))
}

func TestEngine_PrintGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.LevelInfo, Output: &buf})
	e, _ := setupEngine(t, WithLogger(logger))

	require.NoError(t, e.LoadString("hello", `print("hello", 42) drafter.log("via", "api")`))
	out := buf.String()
	assert.Contains(t, out, "hello 42")
	assert.Contains(t, out, "via api")
	assert.Contains(t, out, "component=script")
}

func TestEngine_EventFields(t *testing.T) {
	e, m := setupEngine(t)
	a, err := m.CreateShape("task", diagram.Bounds{Width: 4, Height: 4}, "")
	require.NoError(t, err)
	b, err := m.CreateShape("task", diagram.Bounds{X: 10, Width: 4, Height: 4}, "")
	require.NoError(t, err)

	require.NoError(t, e.LoadString("fields", `
		seen = {}
		drafter.on("shape.move", "executed", function(evt)
			seen.move = evt.command .. "/" .. evt.phase .. "/" .. evt.shape
		end)
		drafter.on("connection.create", "postExecuted", function(evt)
			seen.conn = evt.connection
		end)
	`))

	require.NoError(t, m.MoveShape(a.ID, diagram.Point{Y: 1}))
	conn, err := m.Connect(a.ID, b.ID, "")
	require.NoError(t, err)

	require.NoError(t, e.Exec("check", `
		assert(seen.move == "shape.move/executed/`+a.ID+`", seen.move)
		assert(seen.conn == "`+conn.ID+`", seen.conn)
	`))
}

func TestEngine_UndoRedoFromScript(t *testing.T) {
	e, m := setupEngine(t)

	require.NoError(t, e.LoadString("history", `
		local id = drafter.create("task", 0, 0, 4, 4, "A")
		drafter.move(id, 5, 0)
		drafter.undo()
		assert(drafter.shape(id).x == 0)
		drafter.redo()
		assert(drafter.shape(id).x == 5)
		drafter.delete(id)
		assert(drafter.shape(id) == nil)
		drafter.undo()
		assert(drafter.shape(id).label == "A")
	`))
	assert.Len(t, m.Canvas().Shapes(), 1)
	assert.True(t, m.Stack().CanRedo())
}

func TestEngine_DeleteLabel(t *testing.T) {
	e, m := setupEngine(t)
	shape, err := m.CreateShape("task", diagram.Bounds{Width: 4, Height: 4}, "A")
	require.NoError(t, err)
	labelID := shape.LabelID

	require.NoError(t, e.Exec("del", `drafter.delete("`+labelID+`")`))
	assert.Empty(t, shape.LabelID)
	assert.False(t, m.Canvas().Has(labelID))
}

func TestEngine_Close(t *testing.T) {
	e, m := setupEngine(t)
	registry := m.Stack().Bus().Registry()
	base := registry.Count()

	require.NoError(t, e.LoadString("one", `drafter.on(nil, "execute", function() end)`))
	require.Equal(t, base+1, registry.Count())

	require.NoError(t, e.Close())
	assert.Equal(t, base, registry.Count())
	require.NoError(t, e.Close())

	require.ErrorIs(t, e.LoadString("late", "x = 1"), ErrClosed)
	require.ErrorIs(t, e.Exec("late", "x = 1"), ErrClosed)
}
