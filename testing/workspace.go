package testing

import (
	"os"
	"path/filepath"
	gotesting "testing"
)

// Workspace is a temporary directory for end-to-end render tests.
type Workspace struct {
	t   gotesting.TB
	Dir string
}

func NewWorkspace(t gotesting.TB) *Workspace {
	t.Helper()
	return &Workspace{t: t, Dir: t.TempDir()}
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, filepath.FromSlash(name))
}

// Write creates name with content, including parent directories, and
// returns its path.
func (w *Workspace) Write(name, content string) string {
	w.t.Helper()
	p := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		w.t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		w.t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// Read returns the content of name, failing the test when it is missing.
func (w *Workspace) Read(name string) string {
	w.t.Helper()
	data, err := os.ReadFile(w.Path(name))
	if err != nil {
		w.t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

// Exists reports whether name exists in the workspace.
func (w *Workspace) Exists(name string) bool {
	_, err := os.Stat(w.Path(name))
	return err == nil
}

// Entries lists the names directly under the workspace root.
func (w *Workspace) Entries() []string {
	w.t.Helper()
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		w.t.Fatalf("readdir %s: %v", w.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
