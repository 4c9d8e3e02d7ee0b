package engine

import "sync"

type binding struct {
	def    Definition
	engine Engine
}

// engineCache holds constructed engines so each binding is resolved at most
// once per Renderer.
type engineCache struct {
	mu       sync.RWMutex
	registry *Registry
	bindings map[string]binding
}

func newEngineCache(registry *Registry) *engineCache {
	return &engineCache{
		registry: registry,
		bindings: make(map[string]binding),
	}
}

func (c *engineCache) Get(name string) (Definition, Engine, error) {
	c.mu.RLock()
	if b, exists := c.bindings[name]; exists {
		c.mu.RUnlock()
		return b.def, b.engine, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, exists := c.bindings[name]; exists {
		return b.def, b.engine, nil
	}

	def, eng, err := c.registry.Resolve(name)
	if err != nil {
		return def, nil, err
	}
	c.bindings[name] = binding{def: def, engine: eng}
	return def, eng, nil
}
