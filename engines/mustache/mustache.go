// Package mustache binds Mustache templates.
package mustache

import (
	"github.com/cbroglie/mustache"

	"github.com/cpcf/forge/engine"
)

const Name = "mustache"

func Definition() engine.Definition {
	return engine.Definition{
		Name:       Name,
		Kind:       "Mustache",
		Extensions: []string{".mustache"},
		New: func() (engine.Engine, error) {
			return New(), nil
		},
	}
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Render(template string, vars map[string]any) (string, error) {
	tpl, err := mustache.ParseString(template)
	if err != nil {
		return "", err
	}
	return tpl.Render(vars)
}
