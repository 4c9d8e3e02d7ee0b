//go:build !nohandlebars

// Package handlebars binds Handlebars templates to raymond. Builds tagged
// nohandlebars leave the engine out and report it as unavailable.
package handlebars

import (
	"github.com/aymerick/raymond"

	"github.com/cpcf/forge/engine"
)

func Definition() engine.Definition {
	def := definition()
	def.New = func() (engine.Engine, error) {
		return New(), nil
	}
	return def
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Render(template string, vars map[string]any) (string, error) {
	tpl, err := raymond.Parse(template)
	if err != nil {
		return "", err
	}
	return tpl.Exec(vars)
}
