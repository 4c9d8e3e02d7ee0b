// Package processors provides the built-in post-processors, addressable by
// name from configuration.
package processors

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// GoImports fixes imports and formats rendered Go sources, falling back to
// gofmt when goimports cannot process the file.
type GoImports struct {
	TabWidth  int
	TabIndent bool
	AllErrors bool
	Comments  bool
}

func NewGoImports() *GoImports {
	return &GoImports{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
	}
}

// ProcessContent leaves files other than .go outputs unchanged.
func (g *GoImports) ProcessContent(outputPath string, content []byte) ([]byte, error) {
	if !isGoFile(outputPath) {
		return content, nil
	}

	options := &imports.Options{
		AllErrors: g.AllErrors,
		Comments:  g.Comments,
		TabIndent: g.TabIndent,
		TabWidth:  g.TabWidth,
	}

	formatted, err := imports.Process(outputPath, content, options)
	if err != nil {
		formatted, fmtErr := format.Source(content)
		if fmtErr != nil {
			return nil, fmt.Errorf("failed to format Go code with goimports (%w) and gofmt (%w)", err, fmtErr)
		}
		return formatted, nil
	}
	return formatted, nil
}

func isGoFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}
