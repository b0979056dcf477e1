package procfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrIO is matched by every error returned from Load and Save.
	ErrIO = errors.New("procfile: i/o error")
	// ErrNoPath is returned by Save when neither an explicit path nor
	// Procfile.Path is set.
	ErrNoPath = errors.New("procfile: no path to save to")
)

// FileError records a failed read or write of a Procfile.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("procfile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Is(target error) bool {
	return target == ErrIO
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Load reads and parses the Procfile at path and remembers path for Save.
func Load(path string) (*Procfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	pf := Parse(string(data))
	pf.Path = path
	return pf, nil
}

// Save writes the Procfile to path, or to pf.Path when path is empty. The
// content goes to a temporary file in the same directory which is synced
// and renamed over the destination, so readers see either the old or the
// new file. An existing destination keeps its permission bits; new files
// get 0644. The file ends with a newline.
func (pf *Procfile) Save(path string) error {
	if path == "" {
		path = pf.Path
	}
	if path == "" {
		return &FileError{Op: "save", Err: ErrNoPath}
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &FileError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &FileError{Op: op, Path: path, Err: err}
	}

	text := pf.String()
	if text != "" {
		text += "\n"
	}
	if _, err := tmp.WriteString(text); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &FileError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &FileError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
