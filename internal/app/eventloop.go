package app

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/drafter/internal/config/watcher"
	"github.com/dshills/drafter/internal/render"
)

// reloadRequest is posted to the screen when a watched script changes, so
// the reload runs on the event loop goroutine that owns the Lua states.
type reloadRequest struct {
	path string
}

// Run opens the interactive editor and blocks until the user quits. A
// screen passed in Options must already be initialized; otherwise the
// terminal is used.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	screen := app.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		if err := s.Init(); err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		defer s.Fini()
		screen = s
	}
	app.screen = screen

	app.renderer = render.New(screen, app.modeling.Canvas(), render.WithLogger(app.logger))
	if err := app.renderer.Attach(app.bus); err != nil {
		return &InitError{Component: "renderer", Err: err}
	}
	defer func() { _ = app.renderer.Detach() }()

	app.editor = newEditor(app)
	app.editor.refresh()

	stop := make(chan struct{})
	defer close(stop)
	if app.watcher != nil {
		go app.forwardReloads(screen, stop, app.watcher.Events(), app.watcher.Errors())
	}

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := app.handleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return app.editor.handleKey(ev)
	case *tcell.EventResize:
		app.screen.Sync()
		app.editor.refresh()
	case *tcell.EventInterrupt:
		if req, ok := ev.Data().(reloadRequest); ok {
			if err := app.ReloadScript(req.path); err != nil {
				app.logger.Error("reload %s: %v", req.path, err)
				app.editor.setStatus("reload failed: " + err.Error())
			} else {
				app.editor.setStatus("reloaded " + req.path)
			}
			app.editor.refresh()
		}
	}
	return nil
}

// forwardReloads turns watcher events into screen interrupts and logs
// watcher errors until stop is closed or events is drained.
func (app *Application) forwardReloads(screen tcell.Screen, stop <-chan struct{}, events <-chan watcher.Event, errs <-chan error) {
	for {
		select {
		case <-stop:
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			app.logger.Warn("script watcher: %v", err)
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := screen.PostEvent(tcell.NewEventInterrupt(reloadRequest{path: ev.Path})); err != nil {
				app.logger.Warn("drop reload of %s: %v", ev.Path, err)
			}
		}
	}
}
