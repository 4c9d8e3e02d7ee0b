package processors

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cpcf/forge/postprocess"
)

// FinalNewline ends non-empty output with exactly one newline.
var FinalNewline = postprocess.ProcessorFunc(func(_ string, content []byte) ([]byte, error) {
	trimmed := bytes.TrimRight(content, "\r\n")
	if len(trimmed) == 0 {
		return trimmed, nil
	}
	out := make([]byte, len(trimmed)+1)
	copy(out, trimmed)
	out[len(trimmed)] = '\n'
	return out, nil
})

// TrimTrailingSpace strips spaces and tabs at the end of every line.
var TrimTrailingSpace = postprocess.ProcessorFunc(func(_ string, content []byte) ([]byte, error) {
	lines := bytes.Split(content, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t")
	}
	return bytes.Join(lines, []byte("\n")), nil
})

var builtin = map[string]func() postprocess.Processor{
	"goimports":           func() postprocess.Processor { return NewGoImports() },
	"final-newline":       func() postprocess.Processor { return FinalNewline },
	"trim-trailing-space": func() postprocess.Processor { return TrimTrailingSpace },
}

// Lookup returns the built-in processor registered under name.
func Lookup(name string) (postprocess.Processor, error) {
	newProcessor, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown post-processor %q, known: %v", name, Names())
	}
	return newProcessor(), nil
}

func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
