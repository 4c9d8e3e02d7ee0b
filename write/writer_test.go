package write

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		options Options
	}{
		{"direct", Options{}},
		{"atomic", Options{Atomic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out.txt")
			if err := os.WriteFile(path, []byte("previous content that is much longer"), 0o644); err != nil {
				t.Fatal(err)
			}

			if err := NewFileWriter().Write(path, []byte("new"), tt.options); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != "new" {
				t.Errorf("Expected content fully replaced, got %q", got)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("Expected no leftover temp files, got %d entries", len(entries))
			}
		})
	}
}

func TestFileWriter_CreateDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	if err := NewFileWriter().Write(path, []byte("x"), Options{}); err == nil {
		t.Fatal("Expected error without CreateDirs")
	}
	if err := NewFileWriter().Write(path, []byte("x"), Options{CreateDirs: true}); err != nil {
		t.Fatalf("Write with CreateDirs failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected output to exist: %v", err)
	}
}

func TestFileWriter_AtomicFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out")
	// A directory at the target path makes the final rename fail.
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := NewFileWriter().Write(path, []byte("x"), Options{Atomic: true})
	if err == nil {
		t.Fatal("Expected rename over a non-empty directory to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temp file %s left behind", e.Name())
		}
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("Expected previous target to be untouched, got %v, %v", info, err)
	}
}

func TestNeedsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	needs, err := NeedsWrite(path, []byte("a"))
	if err != nil || !needs {
		t.Fatalf("Expected missing file to need a write, got %v, %v", needs, err)
	}

	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if needs, _ := NeedsWrite(path, []byte("a")); needs {
		t.Error("Expected identical content not to need a write")
	}
	if needs, _ := NeedsWrite(path, []byte("b")); !needs {
		t.Error("Expected different content to need a write")
	}
}

func TestFileWriter_Perm(t *testing.T) {
	tests := []struct {
		name     string
		existing os.FileMode
		perm     os.FileMode
		want     os.FileMode
	}{
		{"keeps existing mode", 0o755, 0, 0o755},
		{"keeps private mode", 0o600, 0, 0o600},
		{"explicit mode wins", 0o600, 0o640, 0o640},
	}

	for _, tt := range tests {
		for _, atomic := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s atomic=%v", tt.name, atomic), func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "run.sh")
				if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
					t.Fatal(err)
				}
				if err := os.Chmod(path, tt.existing); err != nil {
					t.Fatal(err)
				}

				if err := NewFileWriter().Write(path, []byte("new"), Options{Atomic: atomic, Perm: tt.perm}); err != nil {
					t.Fatalf("Write failed: %v", err)
				}
				info, err := os.Stat(path)
				if err != nil {
					t.Fatal(err)
				}
				if got := info.Mode().Perm(); got != tt.want {
					t.Errorf("Expected mode %o, got %o", tt.want, got)
				}
			})
		}
	}
}
