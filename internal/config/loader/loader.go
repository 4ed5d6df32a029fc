// Package loader reads configuration sources into nested maps.
//
// A TOML file and the process environment each produce a map; maps are
// combined with DeepMerge, later sources taking precedence.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads configuration from one source.
type Loader interface {
	// Load returns the configuration map. A missing source yields nil, nil.
	Load() (map[string]any, error)
}

// FileSystem abstracts file reads so tests can supply their own files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 -- config path chosen by the user
}

// MapFS serves files from memory.
type MapFS map[string]string

// ReadFile implements FileSystem.
func (m MapFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(data), nil
}

// DeepMerge merges src into dst and returns dst. Nested maps merge
// recursively; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		dm, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dm, sm)
			continue
		}
		dst[key] = sv
	}
	return dst
}
