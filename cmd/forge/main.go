// Command forge renders templates through any of the built-in engines, one
// file at a time or a whole directory tree.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cpcf/forge/cli"
	"github.com/cpcf/forge/engines/builtin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.ExecuteForge(ctx, builtin.Registry(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
