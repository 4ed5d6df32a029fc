// Package config loads drafter settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, by default $XDG_CONFIG_HOME/drafter/config.toml
//  3. DRAFTER_* environment variables (EnvMapping)
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[canvas]
//	min_width = 4
//	allow_self_loops = false
//
//	[scripts]
//	paths = ["~/.config/drafter/init.lua"]
//	timeout = "2s"
//	watch = true
//
//	[tracing]
//	enabled = true
//	exporter = "file"
//	file_path = "/tmp/drafter-trace.json"
//
// Unknown keys are rejected so that typos surface at startup.
package config
