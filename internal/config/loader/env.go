package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvKey describes where an environment variable lands in the config map.
type EnvKey struct {
	// Path is the dotted config path, e.g. "log.level".
	Path string
	// List splits the value on commas.
	List bool
}

// EnvLoader loads configuration from explicitly mapped environment
// variables. Unmapped variables are ignored.
type EnvLoader struct {
	mapping map[string]EnvKey
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader for the given variable mapping.
func NewEnvLoader(mapping map[string]EnvKey) *EnvLoader {
	return &EnvLoader{mapping: mapping, lookup: os.LookupEnv}
}

// WithLookup replaces the environment lookup function.
func (l *EnvLoader) WithLookup(fn func(string) (string, bool)) *EnvLoader {
	l.lookup = fn
	return l
}

// Load implements Loader. An empty value counts as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for name, key := range l.mapping {
		val, ok := l.lookup(name)
		if !ok {
			continue
		}
		if key.List {
			setByPath(out, key.Path, parseList(val))
			continue
		}
		setByPath(out, key.Path, parseValue(val))
	}
	return out, nil
}

// parseValue converts s to an int, float or bool when it reads as one.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	return s
}

func parseList(s string) []any {
	out := []any{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
