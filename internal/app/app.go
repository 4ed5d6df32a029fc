// Package app wires the drafter components together and runs the editor.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/drafter/internal/command"
	"github.com/dshills/drafter/internal/config"
	"github.com/dshills/drafter/internal/config/watcher"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/event"
	"github.com/dshills/drafter/internal/log"
	"github.com/dshills/drafter/internal/render"
	"github.com/dshills/drafter/internal/script"
	"github.com/dshills/drafter/internal/tracing"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultPath.
	ConfigPath string

	// Config replaces loading from ConfigPath when set.
	Config *config.Config

	// Scripts are loaded after the configured scripts.
	Scripts []string

	// LogOutput receives log lines when the config names no log file.
	// Defaults to os.Stderr.
	LogOutput io.Writer

	// Screen is used by Run instead of the terminal.
	Screen tcell.Screen
}

// Application owns one diagram and everything that edits or shows it.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *log.Logger

	tracing  *tracing.Provider
	bus      *event.Bus
	stack    *command.Stack
	modeling *diagram.Modeling

	// scripts maps a script path to its engine, in load order.
	scripts     map[string]*script.Engine
	scriptOrder []string
	watcher     *watcher.Watcher

	screen   tcell.Screen
	renderer *render.Renderer
	editor   *editor

	logFile   *os.File
	running   atomic.Bool
	closeOnce sync.Once
}

// New creates an application and starts its components.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		scripts: make(map[string]*script.Engine),
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap starts components in dependency order.
func (app *Application) bootstrap() error {
	cfg := app.opts.Config
	if cfg == nil {
		path := app.opts.ConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
		cfg = loaded
	}
	cfg.ExpandPaths()
	app.cfg = cfg

	if err := app.initLogger(); err != nil {
		return &InitError{Component: "logger", Err: err}
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return &InitError{Component: "tracing", Err: err}
	}
	app.tracing = tp

	app.bus = event.NewBus(event.WithLogger(app.logger))
	app.stack = command.New(app.bus,
		command.WithLogger(app.logger),
		command.WithTracer(tp.Tracer()),
	)

	app.modeling, err = diagram.New(app.stack, diagram.NewCanvas(), diagram.WithRules(cfg.Rules()))
	if err != nil {
		return &InitError{Component: "modeling", Err: err}
	}

	paths := append(append([]string(nil), cfg.Scripts.Paths...), app.opts.Scripts...)
	for _, p := range paths {
		if err := app.LoadScript(p); err != nil {
			return &InitError{Component: "scripts", Err: err}
		}
	}

	if cfg.Scripts.Watch && len(app.scriptOrder) > 0 {
		if err := app.initWatcher(); err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	app.logger.Info("started with %d script(s)", len(app.scriptOrder))
	return nil
}

func (app *Application) initLogger() error {
	out := app.opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	if app.cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(app.cfg.Log.File), 0o750); err != nil {
			return err
		}
		f, err := os.OpenFile(app.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		app.logFile = f
		out = f
	}

	app.logger = log.New(log.Config{
		Level:  app.cfg.LogLevel(),
		Output: out,
		Prefix: "drafter",
	})
	return nil
}

func (app *Application) initWatcher() error {
	w, err := watcher.New(
		watcher.WithDebounce(app.cfg.Scripts.Debounce.Std()),
		watcher.WithLogger(app.logger),
	)
	if err != nil {
		return err
	}
	app.watcher = w
	for _, p := range app.scriptOrder {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	return nil
}

// LoadScript loads the Lua script at path into its own engine. Loading a
// path a second time reloads it.
func (app *Application) LoadScript(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if e, ok := app.scripts[abs]; ok {
		return e.Load(abs)
	}

	e := script.New(app.modeling,
		script.WithLogger(app.logger),
		script.WithTimeout(app.cfg.Scripts.Timeout.Std()),
		script.WithTracer(app.tracing.Tracer()),
	)
	if err := e.Load(abs); err != nil {
		_ = e.Close()
		return err
	}
	app.scripts[abs] = e
	app.scriptOrder = append(app.scriptOrder, abs)
	return nil
}

// ReloadScript reloads a previously loaded script.
func (app *Application) ReloadScript(path string) error {
	e, ok := app.scripts[path]
	if !ok {
		return fmt.Errorf("%w: %s", script.ErrNoScript, path)
	}
	if err := e.Reload(); err != nil {
		return err
	}
	app.logger.Info("reloaded %s (%d listeners)", path, e.Listeners())
	return nil
}

// Scripts returns the loaded script paths in load order.
func (app *Application) Scripts() []string {
	return append([]string(nil), app.scriptOrder...)
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *log.Logger {
	return app.logger
}

// Modeling returns the diagram modeling facade.
func (app *Application) Modeling() *diagram.Modeling {
	return app.modeling
}

// Stack returns the command stack.
func (app *Application) Stack() *command.Stack {
	return app.stack
}

// Shutdown releases every component. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.closeOnce.Do(app.shutdown)
}

func (app *Application) shutdown() {
	var errs []error

	if app.watcher != nil {
		errs = append(errs, app.watcher.Close())
	}
	for _, p := range app.scriptOrder {
		errs = append(errs, app.scripts[p].Close())
	}
	if app.renderer != nil {
		errs = append(errs, app.renderer.Detach())
	}
	if app.modeling != nil {
		errs = append(errs, app.modeling.Close())
	}
	if app.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, app.tracing.Shutdown(ctx))
		cancel()
	}

	if err := errors.Join(errs...); err != nil && app.logger != nil {
		app.logger.Warn("shutdown: %v", err)
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}
