// Command render-mustache renders a Mustache template with a JSON variables file:
//
//	render-mustache <template> <output> <vars.json>
package main

import (
	"github.com/cpcf/forge/cli"
	"github.com/cpcf/forge/engines/mustache"
)

func main() {
	cli.Main(mustache.Name)
}
