package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/log"
	"github.com/dshills/drafter/internal/tracing"
)

// Config holds all drafter settings.
type Config struct {
	Log     LogConfig      `toml:"log"`
	Canvas  CanvasConfig   `toml:"canvas"`
	Scripts ScriptsConfig  `toml:"scripts"`
	Tracing tracing.Config `toml:"tracing"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives log output. Empty means stderr.
	File string `toml:"file"`
}

// CanvasConfig configures modeling rules and editor defaults.
type CanvasConfig struct {
	MinWidth       int  `toml:"min_width"`
	MinHeight      int  `toml:"min_height"`
	AllowSelfLoops bool `toml:"allow_self_loops"`

	// ShapeWidth and ShapeHeight size shapes created from the editor.
	ShapeWidth  int `toml:"shape_width"`
	ShapeHeight int `toml:"shape_height"`

	// Step is how far arrow keys move the selection.
	Step int `toml:"step"`
}

// ScriptsConfig configures Lua behaviors.
type ScriptsConfig struct {
	// Paths lists scripts loaded at startup, in order.
	Paths []string `toml:"paths"`
	// Timeout bounds one script run or listener call. Zero disables it.
	Timeout Duration `toml:"timeout"`
	// Watch reloads scripts when their files change.
	Watch bool `toml:"watch"`
	// Debounce coalesces bursts of file events.
	Debounce Duration `toml:"debounce"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() *Config {
	rules := diagram.DefaultRules()
	return &Config{
		Log: LogConfig{Level: "info"},
		Canvas: CanvasConfig{
			MinWidth:       rules.MinWidth,
			MinHeight:      rules.MinHeight,
			AllowSelfLoops: rules.AllowSelfLoops,
			ShapeWidth:     12,
			ShapeHeight:    4,
			Step:           1,
		},
		Scripts: ScriptsConfig{
			Timeout:  Duration(5 * time.Second),
			Debounce: Duration(100 * time.Millisecond),
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".drafter", "config.toml")
	}
	return filepath.Join(dir, "drafter", "config.toml")
}

// Rules returns the modeling rules the canvas settings describe.
func (c *Config) Rules() diagram.Rules {
	return diagram.Rules{
		MinWidth:       c.Canvas.MinWidth,
		MinHeight:      c.Canvas.MinHeight,
		AllowSelfLoops: c.Canvas.AllowSelfLoops,
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	return log.ParseLevel(c.Log.Level)
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if !log.ValidLevel(c.Log.Level) {
		add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}

	if c.Canvas.MinWidth < 1 {
		add("canvas.min_width", "must be at least 1", c.Canvas.MinWidth)
	}
	if c.Canvas.MinHeight < 1 {
		add("canvas.min_height", "must be at least 1", c.Canvas.MinHeight)
	}
	if c.Canvas.ShapeWidth < c.Canvas.MinWidth {
		add("canvas.shape_width", "must not be below canvas.min_width", c.Canvas.ShapeWidth)
	}
	if c.Canvas.ShapeHeight < c.Canvas.MinHeight {
		add("canvas.shape_height", "must not be below canvas.min_height", c.Canvas.ShapeHeight)
	}
	if c.Canvas.Step < 1 {
		add("canvas.step", "must be at least 1", c.Canvas.Step)
	}

	for i, p := range c.Scripts.Paths {
		if strings.TrimSpace(p) == "" {
			add(fmt.Sprintf("scripts.paths[%d]", i), "must not be empty", p)
		}
	}
	if c.Scripts.Timeout < 0 {
		add("scripts.timeout", "must not be negative", c.Scripts.Timeout.Std())
	}
	if c.Scripts.Debounce < 0 {
		add("scripts.debounce", "must not be negative", c.Scripts.Debounce.Std())
	}

	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	case "file":
		if c.Tracing.Enabled && c.Tracing.FilePath == "" {
			add("tracing.file_path", "required by the file exporter", c.Tracing.FilePath)
		}
	default:
		add("tracing.exporter", "must be stdout, file or none", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		add("tracing.sample_rate", "must be between 0 and 1", c.Tracing.SampleRate)
	}

	return errors.Join(errs...)
}

// ExpandPaths replaces a leading ~ in script paths with the home directory.
func (c *Config) ExpandPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	for i, p := range c.Scripts.Paths {
		if p == "~" || strings.HasPrefix(p, "~/") {
			c.Scripts.Paths[i] = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
}
