// Package testing holds in-memory fixtures for exercising renders without
// touching the template tree on disk.
package testing

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"time"
)

// ErrInjected is returned when opening a path registered with FailOn.
var ErrInjected = errors.New("injected failure")

// MemoryFS is a read-only fs.FS built up with WriteFile. Parent directories
// are created implicitly.
type MemoryFS struct {
	files   map[string]*MemoryFile
	failing map[string]bool
}

type MemoryFile struct {
	name    string
	content []byte
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files:   make(map[string]*MemoryFile),
		failing: make(map[string]bool),
	}
}

func (mfs *MemoryFS) WriteFile(name string, data []byte) {
	name = path.Clean(name)
	mfs.files[name] = &MemoryFile{
		name:    name,
		content: data,
		mode:    0o644,
		modTime: time.Now(),
	}
	mfs.ensureDir(path.Dir(name))
}

func (mfs *MemoryFS) WriteString(name, data string) {
	mfs.WriteFile(name, []byte(data))
}

// FailOn makes opening name fail with ErrInjected. The file still shows up
// in directory listings.
func (mfs *MemoryFS) FailOn(name string) {
	mfs.failing[path.Clean(name)] = true
}

func (mfs *MemoryFS) ensureDir(dir string) {
	if dir == "." || dir == "/" {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}
	mfs.files[dir] = &MemoryFile{
		name:    dir,
		mode:    0o755 | fs.ModeDir,
		modTime: time.Now(),
		isDir:   true,
	}
	mfs.ensureDir(path.Dir(dir))
}

func (mfs *MemoryFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if mfs.failing[name] {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	if name == "." {
		return &memoryHandle{file: &MemoryFile{name: ".", mode: 0o755 | fs.ModeDir, isDir: true}, mfs: mfs, path: "."}, nil
	}

	file, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memoryHandle{file: file, mfs: mfs, path: name}, nil
}

// ReadDir lists the direct children of name sorted by file name.
func (mfs *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry
	for filePath, file := range mfs.files {
		if path.Dir(filePath) == name {
			entries = append(entries, fs.FileInfoToDirEntry(file))
		}
	}
	if len(entries) == 0 {
		if file, ok := mfs.files[name]; name != "." && (!ok || !file.isDir) {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

type memoryHandle struct {
	file   *MemoryFile
	mfs    *MemoryFS
	path   string
	offset int
}

func (h *memoryHandle) Read(b []byte) (int, error) {
	if h.file.isDir {
		return 0, &fs.PathError{Op: "read", Path: h.path, Err: fs.ErrInvalid}
	}
	if h.offset >= len(h.file.content) {
		return 0, io.EOF
	}
	n := copy(b, h.file.content[h.offset:])
	h.offset += n
	return n, nil
}

func (h *memoryHandle) Stat() (fs.FileInfo, error) {
	return h.file, nil
}

func (h *memoryHandle) Close() error {
	return nil
}

func (h *memoryHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if !h.file.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: h.path, Err: fs.ErrInvalid}
	}
	entries, err := h.mfs.ReadDir(h.path)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

func (f *MemoryFile) Name() string       { return path.Base(f.name) }
func (f *MemoryFile) Size() int64        { return int64(len(f.content)) }
func (f *MemoryFile) Mode() fs.FileMode  { return f.mode }
func (f *MemoryFile) ModTime() time.Time { return f.modTime }
func (f *MemoryFile) IsDir() bool        { return f.isDir }
func (f *MemoryFile) Sys() any           { return nil }
