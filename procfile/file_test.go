package procfile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadRemembersPath(t *testing.T) {
	path := filepath.Join("testdata", "Procfile.in")
	pf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pf.Path != path {
		t.Fatalf("Path = %q, want %q", pf.Path, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	if got, want := pf.Entries(), Parse(string(data)).Entries(); !slices.Equal(got, want) {
		t.Fatalf("Load entries = %q, Parse entries = %q", got, want)
	}
	worker, ok := pf.Lookup("worker")
	if !ok || worker.Command != "bundle exec sidekiq -C config/sidekiq.yml" {
		t.Fatalf("Lookup(worker) = %q, %v", worker.Command, ok)
	}
	if worker.Line != "worker:\tbundle exec sidekiq -C config/sidekiq.yml" {
		t.Fatalf("source line not kept: %q", worker.Line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "Procfile"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
	var fileErr *FileError
	if !errors.As(err, &fileErr) || fileErr.Op != "read" {
		t.Fatalf("expected read FileError, got %#v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	src, err := Load(filepath.Join("testdata", "Procfile.in"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := filepath.Join(t.TempDir(), "Procfile.out")
	if err := src.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != src.String()+"\n" {
		t.Fatalf("saved %q, want %q", data, src.String()+"\n")
	}
	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load saved file: %v", err)
	}
	if reloaded.String() != src.String() {
		t.Fatalf("reloaded %q, want %q", reloaded.String(), src.String())
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("new file mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestSaveDefaultsToPathAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Procfile")
	if err := os.WriteFile(path, []byte("web: one\nworker: two\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	pf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pf.Delete("worker")
	if err := pf.Save(""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "web: one\n" {
		t.Fatalf("unexpected content: %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestSaveEmptyProcfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Procfile")
	if err := New().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %q", data)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	err := Parse("web: x").Save("")
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestSaveIntoMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "Procfile")
	if err := Parse("web: x").Save(path); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}
