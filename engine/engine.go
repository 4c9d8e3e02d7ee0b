// Package engine defines the template engine capability, the registry of
// engine bindings and the renderer that drives a single render end to end.
package engine

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Engine renders template text against a variable set. Implementations wrap a
// third-party templating library and must not retain the variables.
type Engine interface {
	Render(template string, vars map[string]any) (string, error)
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc func(template string, vars map[string]any) (string, error)

func (f EngineFunc) Render(template string, vars map[string]any) (string, error) {
	return f(template, vars)
}

// Definition describes an engine binding.
type Definition struct {
	// Name is the identifier used on the command line, e.g. "jinja".
	Name string
	// Kind is the label printed in the confirmation line, e.g. "Jinja2".
	Kind string
	// Extensions are the template file extensions claimed by the binding.
	Extensions []string
	// Hint tells the user how to obtain the engine when it is unavailable.
	Hint string
	// New constructs the engine. A nil New marks a binding that is known
	// but was not compiled into this binary.
	New func() (Engine, error)
}

// Available reports whether the binding can be constructed.
func (d Definition) Available() bool {
	return d.New != nil
}

type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	extensions  map[string]string
	fallback    string
}

func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		extensions:  make(map[string]string),
	}
}

// Register adds or replaces a binding. Extensions already claimed by another
// binding are reassigned to this one.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions[def.Name] = def
	for _, ext := range def.Extensions {
		r.extensions[normalizeExt(ext)] = def.Name
	}
}

// MapExtension routes a file extension to a registered engine name.
func (r *Registry) MapExtension(ext, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[normalizeExt(ext)] = name
}

// SetFallback names the engine used for files with no mapped extension.
func (r *Registry) SetFallback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = name
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Definitions returns all bindings sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Resolve constructs the named engine. Unknown or compiled-out bindings
// yield an EngineUnavailable error carrying the binding's hint.
func (r *Registry) Resolve(name string) (Definition, Engine, error) {
	def, ok := r.Lookup(name)
	if !ok {
		return Definition{}, nil, &Error{
			Kind:   EngineUnavailable,
			Engine: name,
			Err:    errUnknownEngine(r.names()),
		}
	}
	if !def.Available() {
		return def, nil, &Error{
			Kind:   EngineUnavailable,
			Engine: name,
			Err:    errNotCompiled(def),
		}
	}

	eng, err := def.New()
	if err != nil {
		return def, nil, &Error{Kind: EngineUnavailable, Engine: name, Err: err}
	}
	return def, eng, nil
}

// ForPath returns the engine name for a template path by its extension,
// falling back to the registry fallback. The second result is false when
// neither matched.
func (r *Registry) ForPath(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.extensions[normalizeExt(filepath.Ext(path))]; ok {
		return name, true
	}
	if r.fallback != "" {
		return r.fallback, true
	}
	return "", false
}

// Claims reports whether the extension of path is mapped to an engine.
func (r *Registry) Claims(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extensions[normalizeExt(filepath.Ext(path))]
	return ok
}

func (r *Registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
