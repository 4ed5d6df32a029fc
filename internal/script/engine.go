// Package script runs Lua behaviors against a diagram.
//
// Scripts hook command phases through the global drafter table and edit the
// diagram through the same modeling operations the editor uses, so every
// scripted change is undoable. Only the base, table, string and math
// libraries are available.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dshills/drafter/internal/command/intercept"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/log"
	"github.com/dshills/drafter/internal/tracing"
)

// DefaultTimeout bounds a single script run or listener call.
const DefaultTimeout = 5 * time.Second

// Engine owns one Lua state bound to a Modeling.
//
// The Lua state is not goroutine-safe. Load, listener callbacks and the
// drafter API all run on the goroutine driving the command stack.
type Engine struct {
	mu sync.Mutex

	L           *lua.LState
	modeling    *diagram.Modeling
	interceptor *intercept.Interceptor
	logger      *log.Logger
	tracer      trace.Tracer
	timeout     time.Duration

	path   string
	source string
	code   string
	closed bool

	listeners int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger receiving print output and errors.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout sets the execution timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithTracer sets the tracer used for script runs.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an engine editing through m.
func New(m *diagram.Modeling, opts ...Option) *Engine {
	e := &Engine{
		modeling: m,
		logger:   log.NullLogger,
		tracer:   noop.NewTracerProvider().Tracer(tracing.TracerName),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("script")
	e.reset()
	return e
}

// reset replaces the Lua state and drops every listener the previous
// scripts registered.
func (e *Engine) reset() {
	if e.interceptor != nil {
		if err := e.interceptor.Close(); err != nil {
			e.logger.Warn("remove listeners: %v", err)
		}
	}
	if e.L != nil {
		e.L.Close()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	e.L = L
	e.interceptor = intercept.New(e.modeling.Stack().Bus())
	e.listeners = 0
	e.installAPI()
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Load runs the script at path, replacing whatever was loaded before.
func (e *Engine) Load(path string) error {
	code, err := os.ReadFile(path) // #nosec G304 -- user supplied path
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if err := e.LoadString(path, string(code)); err != nil {
		return err
	}
	e.mu.Lock()
	e.path = path
	e.mu.Unlock()
	return nil
}

// LoadString runs code under the given source name, replacing whatever was
// loaded before.
func (e *Engine) LoadString(source, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	e.reset()
	e.path = ""
	e.source = source
	e.code = code
	return e.run(source, code)
}

// Reload runs the last loaded script again in a fresh state. A script
// loaded from a file is read again.
func (e *Engine) Reload() error {
	e.mu.Lock()
	path, source, code := e.path, e.source, e.code
	e.mu.Unlock()

	switch {
	case path != "":
		return e.Load(path)
	case source != "":
		return e.LoadString(source, code)
	default:
		return ErrNoScript
	}
}

// Exec runs code in the current state without resetting it.
func (e *Engine) Exec(source, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	return e.run(source, code)
}

func (e *Engine) run(source, code string) (err error) {
	_, span := e.tracer.Start(context.Background(), tracing.SpanPrefixScript+source,
		trace.WithAttributes(attribute.String(tracing.AttrScriptPath, source)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = e.withDeadline(func() error {
		return e.L.DoString(code)
	})
	if err != nil {
		return &ScriptError{Source: source, Err: err}
	}
	e.logger.Debug("loaded %s", source)
	return nil
}

// withDeadline runs fn with the execution timeout applied, unless a
// deadline is already in effect for an enclosing call.
func (e *Engine) withDeadline(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if e.timeout <= 0 || e.L.Context() != nil {
		return fn()
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// Listeners returns the number of drafter.on registrations in effect.
func (e *Engine) Listeners() int {
	return e.listeners
}

// Source returns the name of the loaded script.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Close removes the script listeners and releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	err := e.interceptor.Close()
	e.L.Close()
	return err
}
