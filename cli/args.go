// Package cli implements the render command line contract shared by every
// per-engine binary and by the forge command.
package cli

import (
	"errors"
	"fmt"

	"github.com/cpcf/forge/engine"
)

// Invocation holds the positional arguments of one render.
type Invocation struct {
	TemplatePath  string
	OutputPath    string
	VariablesPath string
	// Extra holds ignored trailing arguments.
	Extra []string
}

func usageLine(program string) string {
	return fmt.Sprintf("Usage: %s <template> <output> <vars.json>", program)
}

// ParseArgs takes the arguments after the program name. Fewer than three, or
// an empty one among the first three, is a usage error; trailing arguments
// are kept in Extra and otherwise ignored.
func ParseArgs(program string, args []string) (Invocation, error) {
	if len(args) < 3 || args[0] == "" || args[1] == "" || args[2] == "" {
		return Invocation{}, &engine.Error{
			Kind: engine.UsageError,
			Err:  errors.New(usageLine(program)),
		}
	}
	return Invocation{
		TemplatePath:  args[0],
		OutputPath:    args[1],
		VariablesPath: args[2],
		Extra:         args[3:],
	}, nil
}
