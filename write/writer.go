// Package write puts rendered output on disk.
package write

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type Writer interface {
	Write(path string, content []byte, options Options) error
}

type Options struct {
	// CreateDirs creates missing parent directories.
	CreateDirs bool
	// Atomic writes a sibling temp file and renames it over path, so a
	// failed write leaves any previous file untouched.
	Atomic bool
	// Perm is the output mode. When zero an existing file keeps its mode
	// and a new one gets 0o644.
	Perm fs.FileMode
}

type FileWriter struct{}

func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// Write creates path or truncates and replaces its content.
func (fw *FileWriter) Write(path string, content []byte, options Options) error {
	if options.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
	}

	perm, exact := options.Perm, options.Perm != 0
	if !exact {
		perm, exact = existingPerm(path)
	}

	if options.Atomic {
		return fw.atomicWrite(path, content, perm, exact)
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		return err
	}
	if options.Perm != 0 {
		// WriteFile only applies perm on create.
		return os.Chmod(path, perm)
	}
	return nil
}

// existingPerm returns the permission bits of the regular file at path and
// true, or 0o644 and false when there is none.
func existingPerm(path string) (fs.FileMode, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0o644, false
	}
	return info.Mode().Perm(), true
}

func (fw *FileWriter) atomicWrite(path string, content []byte, perm fs.FileMode, exact bool) (err error) {
	tempPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(tempPath))
		}
	}()

	if _, err = file.Write(content); err != nil {
		return multierr.Append(err, file.Close())
	}
	if err = file.Close(); err != nil {
		return err
	}
	// OpenFile masks perm with the umask.
	if exact {
		if err = os.Chmod(tempPath, perm); err != nil {
			return err
		}
	}
	return os.Rename(tempPath, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NeedsWrite reports whether path is missing or differs from content.
func NeedsWrite(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return string(existing) != string(content), nil
}
