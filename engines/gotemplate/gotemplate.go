// Package gotemplate binds Go text/template syntax, with the sprig function
// library and a few naming helpers available to every template.
package gotemplate

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/cpcf/forge/engine"
)

const Name = "gotemplate"

func Definition() engine.Definition {
	return engine.Definition{
		Name:       Name,
		Kind:       "Go",
		Extensions: []string{".tmpl", ".gotmpl"},
		New: func() (engine.Engine, error) {
			return New(), nil
		},
	}
}

type Engine struct {
	funcs template.FuncMap
}

func New() *Engine {
	funcs := sprig.TxtFuncMap()
	for name, fn := range FuncMap() {
		funcs[name] = fn
	}
	return &Engine{funcs: funcs}
}

// Render fails on references to keys missing from vars rather than printing
// "<no value>".
func (e *Engine) Render(text string, vars map[string]any) (string, error) {
	tpl, err := template.New("template").
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
