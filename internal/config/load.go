package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/drafter/internal/config/loader"
)

// EnvPrefix prefixes every environment variable drafter reads.
const EnvPrefix = "DRAFTER_"

// EnvMapping returns the environment variables that override settings.
func EnvMapping() map[string]loader.EnvKey {
	return map[string]loader.EnvKey{
		EnvPrefix + "LOG_LEVEL":               {Path: "log.level"},
		EnvPrefix + "LOG_FILE":                {Path: "log.file"},
		EnvPrefix + "CANVAS_MIN_WIDTH":        {Path: "canvas.min_width"},
		EnvPrefix + "CANVAS_MIN_HEIGHT":       {Path: "canvas.min_height"},
		EnvPrefix + "CANVAS_ALLOW_SELF_LOOPS": {Path: "canvas.allow_self_loops"},
		EnvPrefix + "SCRIPTS":                 {Path: "scripts.paths", List: true},
		EnvPrefix + "SCRIPTS_TIMEOUT":         {Path: "scripts.timeout"},
		EnvPrefix + "SCRIPTS_WATCH":           {Path: "scripts.watch"},
		EnvPrefix + "TRACING_ENABLED":         {Path: "tracing.enabled"},
		EnvPrefix + "TRACING_EXPORTER":        {Path: "tracing.exporter"},
		EnvPrefix + "TRACING_FILE":            {Path: "tracing.file_path"},
	}
}

// Load reads the file at path over the defaults, then applies the
// environment. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvMapping()))
}

// LoadFrom merges sources in order over the defaults and validates the
// result.
func LoadFrom(sources ...loader.Loader) (*Config, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := decode(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies m onto cfg, rejecting keys cfg has no field for.
func decode(m map[string]any, cfg *Config) error {
	if len(m) == 0 {
		return nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode merged config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w:\n%s", ErrUnknownSetting, strict.String())
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
