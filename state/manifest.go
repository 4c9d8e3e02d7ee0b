// Package state records the outputs of a directory render so that a later
// render can find outputs whose templates have since been removed.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"

	"github.com/cpcf/forge/write"
)

// FileName is the manifest kept in the root of every rendered tree.
const FileName = ".forge.manifest.json"

const Version = "1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Entry struct {
	// Path is slash separated and relative to the output root.
	Path     string `json:"path"`
	Template string `json:"template"`
	Engine   string `json:"engine"`
	Hash     string `json:"hash"`
	Size     int64  `json:"size"`
}

type Manifest struct {
	Version   string           `json:"version"`
	Generated time.Time        `json:"generated"`
	Generator string           `json:"generator"`
	Entries   map[string]Entry `json:"entries"`
}

func New() *Manifest {
	return &Manifest{
		Version:   Version,
		Generator: "forge",
		Entries:   make(map[string]Entry),
	}
}

// Paths returns the recorded output paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type Manager struct {
	outputRoot string
	writer     write.Writer
}

func NewManager(outputRoot string) *Manager {
	return &Manager{
		outputRoot: outputRoot,
		writer:     write.NewFileWriter(),
	}
}

func (mm *Manager) Path() string {
	return filepath.Join(mm.outputRoot, FileName)
}

// Load returns the manifest of the previous render, or an empty one when the
// tree has never been rendered.
func (mm *Manager) Load() (*Manifest, error) {
	data, err := os.ReadFile(mm.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest := New()
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", mm.Path(), err)
	}
	if manifest.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %q in %s", manifest.Version, mm.Path())
	}
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]Entry)
	}
	return manifest, nil
}

func (mm *Manager) Save(manifest *Manifest) error {
	manifest.Generated = time.Now().UTC()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := mm.writer.Write(mm.Path(), data, write.Options{CreateDirs: true, Atomic: true}); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Record hashes the file at outputPath and adds it to manifest.
func (mm *Manager) Record(manifest *Manifest, outputPath, templatePath, engine string) error {
	rel, err := mm.relative(outputPath)
	if err != nil {
		return err
	}

	hash, size, err := hashFile(outputPath)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", outputPath, err)
	}

	manifest.Entries[rel] = Entry{
		Path:     rel,
		Template: templatePath,
		Engine:   engine,
		Hash:     hash,
		Size:     size,
	}
	return nil
}

// Stale lists outputs recorded in previous that current no longer produces.
func Stale(previous, current *Manifest) []Entry {
	var stale []Entry
	for _, p := range previous.Paths() {
		if _, ok := current.Entries[p]; !ok {
			stale = append(stale, previous.Entries[p])
		}
	}
	return stale
}

type PruneResult struct {
	Removed []string
	// Modified holds stale outputs left in place because they were edited
	// after they were rendered.
	Modified []string
}

// Prune deletes stale outputs whose content still matches what was rendered.
func (mm *Manager) Prune(stale []Entry) (PruneResult, error) {
	var (
		result PruneResult
		errs   error
	)
	for _, entry := range stale {
		full := filepath.Join(mm.outputRoot, filepath.FromSlash(entry.Path))

		hash, _, err := hashFile(full)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to hash %s: %w", full, err))
			continue
		}
		if hash != entry.Hash {
			result.Modified = append(result.Modified, entry.Path)
			continue
		}

		if err := os.Remove(full); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
	}
	return result, errs
}

func (mm *Manager) relative(outputPath string) (string, error) {
	rel, err := filepath.Rel(mm.outputRoot, outputPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the output root %s", outputPath, mm.outputRoot)
	}
	return filepath.ToSlash(rel), nil
}

func hashFile(path string) (string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), int64(len(data)), nil
}
