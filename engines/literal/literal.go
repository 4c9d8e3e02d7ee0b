// Package literal is the fallback engine for templates without a recognised
// extension: every "{{key}}" naming a top-level variable is replaced by its
// value, and everything else is copied through.
package literal

import (
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/cpcf/forge/engine"
)

const Name = "literal"

func Definition() engine.Definition {
	return engine.Definition{
		Name: Name,
		Kind: "literal",
		New: func() (engine.Engine, error) {
			return New(), nil
		},
	}
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Render substitutes in a single pass, so values that themselves contain
// placeholders are not expanded again.
func (e *Engine) Render(template string, vars map[string]any) (string, error) {
	if len(vars) == 0 {
		return template, nil
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		value, err := format(vars[key])
		if err != nil {
			return "", err
		}
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}

// format writes strings as-is and any other value as JSON.
func format(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(v)
}
