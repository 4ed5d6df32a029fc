package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/command/intercept"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/event"
)

// ModuleName is the global table scripts use.
const ModuleName = "drafter"

func (e *Engine) installAPI() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"on":          e.luaOn,
		"create":      e.luaCreate,
		"move":        e.luaMove,
		"resize":      e.luaResize,
		"connect":     e.luaConnect,
		"delete":      e.luaDelete,
		"label":       e.luaLabel,
		"undo":        e.luaUndo,
		"redo":        e.luaRedo,
		"shape":       e.luaShape,
		"shapes":      e.luaShapes,
		"connections": e.luaConnections,
		"log":         e.luaLog,
	})
	e.L.SetGlobal(ModuleName, mod)
	e.L.SetGlobal("print", e.L.NewFunction(e.luaLog))
}

// drafter.on(commands, phase, [priority], fn)
//
// commands is a command name, a list of names, or nil for every command.
// fn(evt) may return a value to answer the phase; returning nothing leaves
// the result undefined.
func (e *Engine) luaOn(L *lua.LState) int {
	commands := checkCommands(L, 1)
	phase := command.Phase(L.CheckString(2))
	if !phase.IsValid() {
		L.ArgError(2, "unknown phase "+string(phase))
		return 0
	}

	priority := event.DefaultPriority
	var fn *lua.LFunction
	if L.GetTop() >= 4 {
		priority = event.Priority(L.CheckInt(3))
		fn = L.CheckFunction(4)
	} else {
		fn = L.CheckFunction(3)
	}

	if _, err := e.interceptor.On(commands, phase, e.listener(fn), intercept.WithPriority(priority)); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.listeners++
	return 0
}

func checkCommands(L *lua.LState, n int) []string {
	switch v := L.Get(n).(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var commands []string
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				L.ArgError(n, "command names must be strings")
				return nil
			}
			commands = append(commands, string(s))
		}
		return commands
	default:
		L.ArgError(n, "string, table or nil expected")
		return nil
	}
}

// listener adapts a Lua function to an interceptor callback.
func (e *Engine) listener(fn *lua.LFunction) intercept.Func {
	return func(inv *intercept.Invocation) error {
		L := e.L
		evt := e.eventTable(inv)

		return e.withDeadline(func() error {
			top := L.GetTop()
			L.Push(fn)
			L.Push(evt)
			if err := L.PCall(1, lua.MultRet, nil); err != nil {
				return &ScriptError{Source: e.source, Err: err}
			}
			if L.GetTop() > top {
				ret := L.Get(top + 1)
				L.SetTop(top)
				inv.Return(fromLua(ret))
			}
			return nil
		})
	}
}

// eventTable builds the evt argument of a listener.
func (e *Engine) eventTable(inv *intercept.Invocation) *lua.LTable {
	L := e.L
	t := L.NewTable()
	t.RawSetString("command", lua.LString(inv.Command()))
	t.RawSetString("phase", lua.LString(inv.Channel().Base()))
	t.RawSetString("id", lua.LNumber(inv.Action.ID))

	shape, conn := subjects(inv.Context())
	if shape != "" {
		t.RawSetString("shape", lua.LString(shape))
	}
	if conn != "" {
		t.RawSetString("connection", lua.LString(conn))
	}
	t.RawSetString("stop", L.NewFunction(func(L *lua.LState) int {
		inv.StopPropagation()
		return 0
	}))
	return t
}

// subjects returns the shape and connection IDs a context refers to.
func subjects(ctx command.Context) (shape, conn string) {
	switch c := ctx.(type) {
	case *diagram.CreateShapeContext:
		if c.Shape != nil {
			shape = c.Shape.ID
		}
	case *diagram.DeleteShapeContext:
		shape = c.ShapeID
	case *diagram.MoveShapeContext:
		shape = c.ShapeID
	case *diagram.ResizeShapeContext:
		shape = c.ShapeID
	case *diagram.CreateConnectionContext:
		if c.Connection != nil {
			conn = c.Connection.ID
		}
	case *diagram.DeleteConnectionContext:
		conn = c.ConnectionID
	case *diagram.ReconnectContext:
		conn = c.ConnectionID
	case *diagram.LayoutConnectionContext:
		conn = c.ConnectionID
	}
	return shape, conn
}

func fromLua(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	default:
		return v.String()
	}
}

func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

// drafter.create(type, x, y, w, h, [text]) -> id
func (e *Engine) luaCreate(L *lua.LState) int {
	b := diagram.Bounds{X: L.CheckInt(2), Y: L.CheckInt(3), Width: L.CheckInt(4), Height: L.CheckInt(5)}
	shape, err := e.modeling.CreateShape(L.CheckString(1), b, L.OptString(6, ""))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(shape.ID))
	return 1
}

// drafter.move(id, dx, dy)
func (e *Engine) luaMove(L *lua.LState) int {
	if err := e.modeling.MoveShape(L.CheckString(1), diagram.Point{X: L.CheckInt(2), Y: L.CheckInt(3)}); err != nil {
		return raise(L, err)
	}
	return 0
}

// drafter.resize(id, x, y, w, h)
func (e *Engine) luaResize(L *lua.LState) int {
	b := diagram.Bounds{X: L.CheckInt(2), Y: L.CheckInt(3), Width: L.CheckInt(4), Height: L.CheckInt(5)}
	if err := e.modeling.ResizeShape(L.CheckString(1), b); err != nil {
		return raise(L, err)
	}
	return 0
}

// drafter.connect(source, target, [text]) -> id
func (e *Engine) luaConnect(L *lua.LState) int {
	conn, err := e.modeling.Connect(L.CheckString(1), L.CheckString(2), L.OptString(3, ""))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(conn.ID))
	return 1
}

// drafter.delete(id) deletes a shape or connection.
func (e *Engine) luaDelete(L *lua.LState) int {
	id := L.CheckString(1)
	el, ok := e.modeling.Canvas().Get(id)
	if !ok {
		return raise(L, fmt.Errorf("%w: %s", diagram.ErrNotFound, id))
	}

	var err error
	switch el.Kind() {
	case diagram.KindShape:
		err = e.modeling.DeleteShape(id)
	case diagram.KindConnection:
		err = e.modeling.DeleteConnection(id)
	default:
		owner, lerr := e.modeling.Canvas().Label(id)
		if lerr != nil {
			return raise(L, lerr)
		}
		err = e.modeling.UpdateLabel(owner.OwnerID, "")
	}
	if err != nil {
		return raise(L, err)
	}
	return 0
}

// drafter.label(id, text)
func (e *Engine) luaLabel(L *lua.LState) int {
	if err := e.modeling.UpdateLabel(L.CheckString(1), L.CheckString(2)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (e *Engine) luaUndo(L *lua.LState) int {
	if err := e.modeling.Stack().Undo(); err != nil {
		return raise(L, err)
	}
	return 0
}

func (e *Engine) luaRedo(L *lua.LState) int {
	if err := e.modeling.Stack().Redo(); err != nil {
		return raise(L, err)
	}
	return 0
}

// drafter.shape(id) -> {id, type, x, y, width, height, label} or nil
func (e *Engine) luaShape(L *lua.LState) int {
	shape, err := e.modeling.Canvas().Shape(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}

	t := L.NewTable()
	t.RawSetString("id", lua.LString(shape.ID))
	t.RawSetString("type", lua.LString(shape.Type))
	t.RawSetString("x", lua.LNumber(shape.Bounds.X))
	t.RawSetString("y", lua.LNumber(shape.Bounds.Y))
	t.RawSetString("width", lua.LNumber(shape.Bounds.Width))
	t.RawSetString("height", lua.LNumber(shape.Bounds.Height))
	if shape.LabelID != "" {
		if label, err := e.modeling.Canvas().Label(shape.LabelID); err == nil {
			t.RawSetString("label", lua.LString(label.Text))
		}
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaShapes(L *lua.LState) int {
	t := L.NewTable()
	for _, s := range e.modeling.Canvas().Shapes() {
		t.Append(lua.LString(s.ID))
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaConnections(L *lua.LState) int {
	t := L.NewTable()
	for _, c := range e.modeling.Canvas().Connections() {
		t.Append(lua.LString(c.ID))
	}
	L.Push(t)
	return 1
}

// drafter.log(...) and print(...) write to the engine logger.
func (e *Engine) luaLog(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.logger.Info("%s", strings.Join(parts, " "))
	return 0
}
