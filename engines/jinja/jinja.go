// Package jinja binds Jinja2/Django syntax templates to pongo2.
package jinja

import (
	"math"
	"regexp"

	"github.com/flosch/pongo2/v6"

	"github.com/cpcf/forge/engine"
)

const Name = "jinja"

// pongo2 refuses a whole context when one key is not an identifier.
var identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Rendered output is source code and text, not HTML, so values are written
// as given. pongo2 keeps this switch package-wide.
func init() {
	pongo2.SetAutoescape(false)
}

func Definition() engine.Definition {
	return engine.Definition{
		Name:       Name,
		Kind:       "Jinja2",
		Extensions: []string{".jinja", ".jinja2", ".j2"},
		New: func() (engine.Engine, error) {
			return New(), nil
		},
	}
}

// Engine renders templates from a private template set so that filters or
// tags registered by other code in the process do not leak in.
type Engine struct {
	set *pongo2.TemplateSet
}

func New() *Engine {
	return &Engine{
		set: pongo2.NewSet("forge", pongo2.DefaultLoader),
	}
}

func (e *Engine) Render(template string, vars map[string]any) (string, error) {
	tpl, err := e.set.FromString(template)
	if err != nil {
		return "", err
	}

	ctx := make(pongo2.Context, len(vars))
	for key, value := range vars {
		if identifier.MatchString(key) {
			ctx[key] = integral(value)
		}
	}
	return tpl.Execute(ctx)
}

// integral turns whole JSON numbers into int64 so that pongo2 prints 3 rather
// than its float form 3.000000. Nested objects and arrays are copied.
func integral(v any) any {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v)
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = integral(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = integral(value)
		}
		return out
	default:
		return v
	}
}
