// Command render-hbs renders a Handlebars template with a JSON variables file:
//
//	render-hbs <template> <output> <vars.json>
package main

import (
	"github.com/cpcf/forge/cli"
	"github.com/cpcf/forge/engines/handlebars"
)

func main() {
	cli.Main(handlebars.Name)
}
