// Package procfile reads and writes Procfiles, text files that declare one
// named shell command per line:
//
//	web: bundle exec rails server -p $PORT
//	worker:	bundle exec sidekiq
//
// A line is an entry when it matches ^([A-Za-z0-9_-]+):\s*(.+)$ and the
// command is not blank. Every other line, comments included, is skipped
// without error. Entries keep the order in which their names first appear;
// a repeated name replaces the earlier command in place.
package procfile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var entryPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+):\s*(.+)$`)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrInvalidEntry is returned by Set for a malformed name or an empty
// command.
var ErrInvalidEntry = errors.New("procfile: invalid entry")

// Entry is a single named command.
type Entry struct {
	Name    string
	Command string
	// Line is the source line the entry was parsed from. Entries added with
	// Set have the formatted line.
	Line string
}

func (e Entry) String() string {
	return e.Name + ": " + e.Command
}

// Procfile is an ordered set of entries keyed by name. The zero value is an
// empty Procfile ready to use. It is not safe for concurrent mutation.
type Procfile struct {
	// Path is where Load read the file from and where Save writes by
	// default.
	Path string

	entries map[string]Entry
	order   []string
}

// New returns an empty Procfile.
func New() *Procfile {
	return &Procfile{}
}

// Parse builds a Procfile from text. Windows line endings are accepted.
func Parse(text string) *Procfile {
	pf := New()
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		m := entryPattern.FindStringSubmatch(line)
		if m == nil || strings.TrimSpace(m[2]) == "" {
			continue
		}
		pf.put(Entry{Name: m[1], Command: m[2], Line: line})
	}
	return pf
}

func (pf *Procfile) put(e Entry) {
	if pf.entries == nil {
		pf.entries = make(map[string]Entry)
	}
	if _, ok := pf.entries[e.Name]; !ok {
		pf.order = append(pf.order, e.Name)
	}
	pf.entries[e.Name] = e
}

// Lookup returns the entry called name.
func (pf *Procfile) Lookup(name string) (Entry, bool) {
	e, ok := pf.entries[name]
	return e, ok
}

// Delete removes the entry called name and reports whether it existed.
func (pf *Procfile) Delete(name string) bool {
	if _, ok := pf.entries[name]; !ok {
		return false
	}
	delete(pf.entries, name)
	pf.order = slices.DeleteFunc(pf.order, func(n string) bool { return n == name })
	return true
}

// Set adds an entry, or replaces the command of an existing one without
// moving it.
func (pf *Procfile) Set(name, command string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: name %q must match [A-Za-z0-9_-]+", ErrInvalidEntry, name)
	}
	if strings.TrimSpace(command) == "" || strings.ContainsAny(command, "\r\n") {
		return fmt.Errorf("%w: command for %q must be a single non-blank line", ErrInvalidEntry, name)
	}
	e := Entry{Name: name, Command: command}
	e.Line = e.String()
	pf.put(e)
	return nil
}

// Len returns the number of entries.
func (pf *Procfile) Len() int {
	return len(pf.order)
}

// Names returns the entry names in order.
func (pf *Procfile) Names() []string {
	return slices.Clone(pf.order)
}

// Entries returns the entries in order.
func (pf *Procfile) Entries() []Entry {
	out := make([]Entry, 0, len(pf.order))
	for _, name := range pf.order {
		out = append(out, pf.entries[name])
	}
	return out
}

// String formats the entries as "name: command" lines separated by a
// newline, without a trailing newline.
func (pf *Procfile) String() string {
	var b strings.Builder
	for i, name := range pf.order {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pf.entries[name].String())
	}
	return b.String()
}
