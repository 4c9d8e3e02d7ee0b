// Package builtin assembles the registry of every engine binding shipped with
// forge.
package builtin

import (
	"github.com/cpcf/forge/engine"
	"github.com/cpcf/forge/engines/gotemplate"
	"github.com/cpcf/forge/engines/handlebars"
	"github.com/cpcf/forge/engines/jinja"
	"github.com/cpcf/forge/engines/literal"
	"github.com/cpcf/forge/engines/mustache"
)

func Definitions() []engine.Definition {
	return []engine.Definition{
		jinja.Definition(),
		handlebars.Definition(),
		mustache.Definition(),
		gotemplate.Definition(),
		literal.Definition(),
	}
}

// Registry returns a registry holding the built-in bindings with the literal
// engine as the fallback for unmapped extensions.
func Registry() *engine.Registry {
	reg := engine.NewRegistry()
	for _, def := range Definitions() {
		reg.Register(def)
	}
	reg.SetFallback(literal.Name)
	return reg
}
