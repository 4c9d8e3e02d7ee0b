package handlebars

import "github.com/cpcf/forge/engine"

const Name = "handlebars"

func definition() engine.Definition {
	return engine.Definition{
		Name:       Name,
		Kind:       "Handlebars",
		Extensions: []string{".hbs", ".handlebars"},
		Hint:       "Rebuild without the nohandlebars tag: go install github.com/cpcf/forge/cmd/...@latest",
	}
}
