// Package envfile loads environment overlays for procrun from files. The
// format is picked from the file extension: .toml and .yaml/.yml hold a flat
// table of scalars, anything else is read as dotenv KEY=VALUE lines.
package envfile

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrFormat = errors.New("envfile: invalid format")

// Load reads the overlay file at path.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var env map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		env, err = ParseTOML(f)
	case ".yaml", ".yml":
		env, err = ParseYAML(f)
	default:
		env, err = ParseDotenv(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// LoadAll loads each path in turn and merges the results, later files
// winning on key collisions.
func LoadAll(paths ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, p := range paths {
		layer, err := Load(p)
		if err != nil {
			return nil, err
		}
		maps.Copy(env, layer)
	}
	return env, nil
}

// ParseTOML decodes a flat TOML table.
func ParseTOML(r io.Reader) (map[string]string, error) {
	raw := make(map[string]any)
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return stringify(raw)
}

// ParseYAML decodes a flat YAML mapping. An empty document yields an empty
// overlay.
func ParseYAML(r io.Reader) (map[string]string, error) {
	raw := make(map[string]any)
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return stringify(raw)
}

func stringify(raw map[string]any) (map[string]string, error) {
	env := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			env[k] = val
		case nil:
			env[k] = ""
		case bool, int, int64, uint64, float64:
			env[k] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("%w: value of %q is a %T, want a scalar", ErrFormat, k, v)
		}
	}
	return env, nil
}

// ParseDotenv reads dotenv KEY=VALUE lines with godotenv. Comments, an
// "export " prefix and quoted values are accepted; $VAR references in
// unquoted or double-quoted values are expanded from earlier keys or the
// process environment, single-quoted values are kept verbatim.
func ParseDotenv(r io.Reader) (map[string]string, error) {
	env, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return env, nil
}
