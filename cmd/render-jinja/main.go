// Command render-jinja renders a Jinja2 template with a JSON variables file:
//
//	render-jinja <template> <output> <vars.json>
package main

import (
	"github.com/cpcf/forge/cli"
	"github.com/cpcf/forge/engines/jinja"
)

func main() {
	cli.Main(jinja.Name)
}
