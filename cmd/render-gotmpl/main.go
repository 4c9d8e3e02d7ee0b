// Command render-gotmpl renders a Go text/template template with a JSON variables file:
//
//	render-gotmpl <template> <output> <vars.json>
package main

import (
	"github.com/cpcf/forge/cli"
	"github.com/cpcf/forge/engines/gotemplate"
)

func main() {
	cli.Main(gotemplate.Name)
}
