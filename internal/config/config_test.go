package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/drafter/internal/config/loader"
	"github.com/dshills/drafter/internal/diagram"
	"github.com/dshills/drafter/internal/log"
)

func envFrom(vars map[string]string) *loader.EnvLoader {
	return loader.NewEnvLoader(EnvMapping()).WithLookup(func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, diagram.DefaultRules(), cfg.Rules())
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
	assert.Equal(t, 5*time.Second, cfg.Scripts.Timeout.Std())
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	fsys := loader.MapFS{"/c.toml": `
[log]
level = "debug"

[canvas]
min_width = 5
min_height = 2
shape_width = 10
allow_self_loops = true

[scripts]
paths = ["init.lua"]
timeout = "250ms"
watch = true

[tracing]
enabled = true
exporter = "file"
file_path = "/tmp/trace.json"
`}

	cfg, err := LoadFrom(loader.NewTOMLLoaderWithFS(fsys, "/c.toml"))
	require.NoError(t, err)

	assert.Equal(t, log.LevelDebug, cfg.LogLevel())
	assert.Equal(t, diagram.Rules{MinWidth: 5, MinHeight: 2, AllowSelfLoops: true}, cfg.Rules())
	assert.Equal(t, 10, cfg.Canvas.ShapeWidth)
	assert.Equal(t, 4, cfg.Canvas.ShapeHeight, "unset keys keep their defaults")
	assert.Equal(t, []string{"init.lua"}, cfg.Scripts.Paths)
	assert.Equal(t, 250*time.Millisecond, cfg.Scripts.Timeout.Std())
	assert.Equal(t, 100*time.Millisecond, cfg.Scripts.Debounce.Std())
	assert.True(t, cfg.Scripts.Watch)
	assert.Equal(t, "file", cfg.Tracing.Exporter)
	assert.Equal(t, "drafter", cfg.Tracing.ServiceName)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	fsys := loader.MapFS{"/c.toml": "[log]\nlevel = \"debug\"\n[scripts]\npaths = [\"a.lua\"]\n"}
	env := envFrom(map[string]string{
		"DRAFTER_LOG_LEVEL":        "error",
		"DRAFTER_SCRIPTS":          "b.lua,c.lua",
		"DRAFTER_SCRIPTS_TIMEOUT":  "1s",
		"DRAFTER_CANVAS_MIN_WIDTH": "2",
		"DRAFTER_TRACING_ENABLED":  "true",
	})

	cfg, err := LoadFrom(loader.NewTOMLLoaderWithFS(fsys, "/c.toml"), env)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"b.lua", "c.lua"}, cfg.Scripts.Paths)
	assert.Equal(t, time.Second, cfg.Scripts.Timeout.Std())
	assert.Equal(t, 2, cfg.Canvas.MinWidth)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadFrom_UnknownSetting(t *testing.T) {
	fsys := loader.MapFS{"/c.toml": "[canvas]\nmin_widht = 4\n"}

	_, err := LoadFrom(loader.NewTOMLLoaderWithFS(fsys, "/c.toml"))
	require.ErrorIs(t, err, ErrUnknownSetting)
	assert.Contains(t, err.Error(), "min_widht")
}

func TestLoadFrom_BadDuration(t *testing.T) {
	fsys := loader.MapFS{"/c.toml": "[scripts]\ntimeout = \"soon\"\n"}

	_, err := LoadFrom(loader.NewTOMLLoaderWithFS(fsys, "/c.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoadFrom_ParseError(t *testing.T) {
	fsys := loader.MapFS{"/c.toml": "[log\n"}

	_, err := LoadFrom(loader.NewTOMLLoaderWithFS(fsys, "/c.toml"))
	var perr *loader.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"min width", func(c *Config) { c.Canvas.MinWidth = 0 }, "canvas.min_width"},
		{"min height", func(c *Config) { c.Canvas.MinHeight = -1 }, "canvas.min_height"},
		{"shape width", func(c *Config) { c.Canvas.ShapeWidth = 1 }, "canvas.shape_width"},
		{"shape height", func(c *Config) { c.Canvas.ShapeHeight = 1 }, "canvas.shape_height"},
		{"step", func(c *Config) { c.Canvas.Step = 0 }, "canvas.step"},
		{"empty script", func(c *Config) { c.Scripts.Paths = []string{"a.lua", " "} }, "scripts.paths[1]"},
		{"timeout", func(c *Config) { c.Scripts.Timeout = -1 }, "scripts.timeout"},
		{"debounce", func(c *Config) { c.Scripts.Debounce = -1 }, "scripts.debounce"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "tracing.exporter"},
		{"file path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "file"
		}, "tracing.file_path"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrValidationFailed)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Canvas.Step = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "canvas.step")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas]\nstep = 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Canvas.Step)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Canvas.Step)
}

func TestExpandPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.Scripts.Paths = []string{"~/init.lua", "/abs.lua", "rel.lua"}
	cfg.ExpandPaths()

	assert.Equal(t, []string{filepath.Join(home, "init.lua"), "/abs.lua", "rel.lua"}, cfg.Scripts.Paths)
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}
