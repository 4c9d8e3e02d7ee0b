package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cpcf/forge/config"
	"github.com/cpcf/forge/engine"
	"github.com/cpcf/forge/engines/builtin"
)

// Renderer is a single-engine render command such as render-jinja.
type Renderer struct {
	Program  string
	Engine   string
	Registry *engine.Registry
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
}

// Main runs the command for engineName against the process arguments and
// exits with its status.
func Main(engineName string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	r := &Renderer{
		Program:  filepath.Base(os.Args[0]),
		Engine:   engineName,
		Registry: builtin.Registry(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
	}
	code := r.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// Run renders one template and returns the process exit code: 0 on success,
// 1 on any failure with a diagnostic written to Stderr.
func (c *Renderer) Run(ctx context.Context, args []string) int {
	cfg := config.Default()
	if c.Getenv != nil {
		if err := cfg.ApplyEnv(c.Getenv); err != nil {
			return c.fail(err)
		}
	}

	logger, err := newLogger(c.Stderr, cfg.LogLevel)
	if err != nil {
		return c.fail(err)
	}

	renderer := engine.NewRenderer(c.Registry,
		engine.WithLogger(logger),
		engine.WithAtomicWrites(cfg.AtomicWrite),
	)

	def, err := renderer.Resolve(c.Engine)
	if err != nil {
		return c.fail(err)
	}

	inv, err := ParseArgs(c.Program, args)
	if err != nil {
		return c.fail(err)
	}
	if len(inv.Extra) > 0 {
		logger.Debug("ignoring extra arguments", "args", inv.Extra)
	}

	res, err := renderer.RenderFile(ctx, engine.FileJob{
		TemplatePath:  inv.TemplatePath,
		OutputPath:    inv.OutputPath,
		VariablesPath: inv.VariablesPath,
		Engine:        def.Name,
	})
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.Stdout, "Rendered %s template to %s\n", res.Definition.Kind, res.OutputPath)
	return 0
}

func (c *Renderer) fail(err error) int {
	report(c.Stderr, c.Program, err)
	return 1
}

// report prints err as a single diagnostic. Usage errors print the bare usage
// line.
func report(w io.Writer, program string, err error) {
	if engine.KindOf(err) == engine.UsageError {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", program, err)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
