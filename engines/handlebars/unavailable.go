//go:build nohandlebars

package handlebars

import "github.com/cpcf/forge/engine"

// Definition describes the binding without a constructor.
func Definition() engine.Definition {
	return definition()
}
