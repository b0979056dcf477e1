package procrun

import (
	"cmp"
	"maps"
	"os"
	"slices"
	"strings"
)

// CwdKey is the environment key that overrides the working directory of a
// Process when its Dir is empty. It is substituted into commands only where
// they reference $cwd explicitly.
const CwdKey = "cwd"

// Merge returns a new map holding base overlaid by each layer in turn, so
// later layers win on key collisions. Nil maps are ignored.
func Merge(base map[string]string, layers ...map[string]string) map[string]string {
	size := len(base)
	for _, l := range layers {
		size += len(l)
	}
	env := make(map[string]string, size)
	maps.Copy(env, base)
	for _, l := range layers {
		maps.Copy(env, l)
	}
	return env
}

// Expand replaces every literal $KEY in template with env[KEY] in a single
// left-to-right pass. Longer keys are tried first so that $FOOBAR is not
// consumed by a shorter FOO, substituted values are never expanded again,
// and placeholders without a matching key are left untouched.
func Expand(template string, env map[string]string) string {
	if len(env) == 0 || !strings.Contains(template, "$") {
		return template
	}
	keys := slices.Collect(maps.Keys(env))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		pairs = append(pairs, "$"+k, env[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// environ returns the host environment with env appended in key order.
// exec.Cmd keeps the last value of a duplicated key, so env wins.
func environ(env map[string]string) []string {
	out := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}

// setenv installs env into the process-wide environment in key order.
func setenv(env map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(env)) {
		if err := os.Setenv(k, env[k]); err != nil {
			return err
		}
	}
	return nil
}
