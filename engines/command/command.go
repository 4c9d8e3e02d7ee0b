// Package command binds a template extension to an external renderer run as
//
//	<runtime> [args...] <template> <output> <vars.json>
//
// which is the same contract the render-* commands implement, so any of them,
// or a script for a runtime forge has no Go binding for, can serve an
// extension.
package command

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/cpcf/forge/engine"
)

// Prefix starts the name of every command binding, e.g. "command:ejs".
const Prefix = "command:"

// NameFor returns the binding name for a template extension.
func NameFor(ext string) string {
	return Prefix + strings.TrimPrefix(strings.ToLower(ext), ".")
}

// Definition describes a binding for ext that runs argv. The runtime,
// argv[0], is looked up on PATH when the engine is constructed, so a missing
// runtime is reported as an unavailable engine.
func Definition(ext string, argv []string) engine.Definition {
	label := strings.ToUpper(strings.TrimPrefix(ext, "."))
	argv = append([]string(nil), argv...)

	def := engine.Definition{
		Name:       NameFor(ext),
		Kind:       label,
		Extensions: []string{ext},
		New: func() (engine.Engine, error) {
			return New(ext, argv)
		},
	}
	if len(argv) > 0 {
		def.Hint = fmt.Sprintf("Install %s and make sure it is on PATH", argv[0])
	}
	return def
}

type Engine struct {
	ext  string
	argv []string
}

func New(ext string, argv []string) (*Engine, error) {
	if len(argv) == 0 {
		return nil, errors.New("renderer command is empty")
	}
	runtime, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("runtime %s not found: %w", argv[0], err)
	}
	return &Engine{
		ext:  ext,
		argv: append([]string{runtime}, argv[1:]...),
	}, nil
}

// Render stages the template and variables in a temporary directory, runs the
// command against them and returns what it wrote to the output path. A
// non-zero exit status is an error carrying the command's stderr.
func (e *Engine) Render(template string, vars map[string]any) (string, error) {
	dir, err := os.MkdirTemp("", "forge-command-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	templatePath := filepath.Join(dir, "template"+e.ext)
	outputPath := filepath.Join(dir, "output")
	varsPath := filepath.Join(dir, "vars.json")

	if err := os.WriteFile(templatePath, []byte(template), 0o600); err != nil {
		return "", err
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(vars)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(varsPath, data, 0o600); err != nil {
		return "", err
	}

	args := append(append([]string(nil), e.argv[1:]...), templatePath, outputPath, varsPath)
	cmd := exec.Command(e.argv[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", filepath.Base(e.argv[0]), err, msg)
		}
		return "", fmt.Errorf("%s: %w", filepath.Base(e.argv[0]), err)
	}

	out, err := os.ReadFile(outputPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s exited without writing its output", filepath.Base(e.argv[0]))
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
