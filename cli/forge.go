package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cpcf/forge/config"
	"github.com/cpcf/forge/engine"
	"github.com/cpcf/forge/engines/command"
	"github.com/cpcf/forge/processors"
	"github.com/cpcf/forge/state"
)

type forgeOptions struct {
	registry   *engine.Registry
	getenv     func(string) string
	configPath string
	logLevel   string
}

// ExecuteForge runs the forge command tree with args and returns the exit
// code.
func ExecuteForge(ctx context.Context, registry *engine.Registry, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewForgeCmd(registry, os.Getenv), args, stdout, stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		report(stderr, root.Name(), err)
		return 1
	}
	return 0
}

// NewForgeCmd builds the forge root command.
func NewForgeCmd(registry *engine.Registry, getenv func(string) string) *cobra.Command {
	opts := &forgeOptions{registry: registry, getenv: getenv}

	root := &cobra.Command{
		Use:           "forge",
		Short:         "Render Jinja2, Handlebars, Mustache and Go templates with JSON variables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newRenderCmd(opts),
		newRenderDirCmd(opts),
		newEnginesCmd(opts),
	)
	return root
}

func (o *forgeOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.getenv != nil {
		if err := cfg.ApplyEnv(o.getenv); err != nil {
			return cfg, err
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// newRenderer applies cfg to the registry and builds a renderer from it.
func (o *forgeOptions) newRenderer(cmd *cobra.Command, cfg config.Config, extra ...engine.Option) (*engine.Renderer, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := o.configureRegistry(cfg); err != nil {
		return nil, err
	}

	failMode, err := engine.ParseFailureMode(cfg.FailMode)
	if err != nil {
		return nil, err
	}

	options := []engine.Option{
		engine.WithLogger(logger),
		engine.WithAtomicWrites(cfg.AtomicWrite),
		engine.WithFailureMode(failMode),
	}
	for _, name := range cfg.PostProcess {
		p, err := processors.Lookup(name)
		if err != nil {
			return nil, err
		}
		options = append(options, engine.WithPostProcessor(p))
	}
	options = append(options, extra...)

	return engine.NewRenderer(o.registry, options...), nil
}

// configureRegistry registers the configured command renderers and applies
// extension overrides, which may name either kind of engine.
func (o *forgeOptions) configureRegistry(cfg config.Config) error {
	for ext, argv := range cfg.Renderers {
		o.registry.Register(command.Definition(ext, argv))
	}
	for ext, name := range cfg.Extensions {
		if _, ok := o.registry.Lookup(name); !ok {
			return fmt.Errorf("extension %s mapped to unknown engine %q", ext, name)
		}
		o.registry.MapExtension(ext, name)
	}
	return nil
}

func newRenderCmd(opts *forgeOptions) *cobra.Command {
	var engineName string

	cmd := &cobra.Command{
		Use:   "render <template> <output> <vars.json>",
		Short: "Render one template file",
		Long: "Render one template file with the variables of a JSON object file.\n" +
			"The engine is picked by --engine or else by the template extension;\n" +
			"templates with an unknown extension get {{key}} substitution.",
		Args: func(cmd *cobra.Command, args []string) error {
			_, err := ParseArgs(cmd.CommandPath(), args)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			renderer, err := opts.newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			if engineName != "" {
				if _, err := renderer.Resolve(engineName); err != nil {
					return err
				}
			}

			inv, _ := ParseArgs(cmd.CommandPath(), args)
			res, err := renderer.RenderFile(cmd.Context(), engine.FileJob{
				TemplatePath:  inv.TemplatePath,
				OutputPath:    inv.OutputPath,
				VariablesPath: inv.VariablesPath,
				Engine:        engineName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s template to %s\n", res.Definition.Kind, res.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "engine to use instead of detecting it from the extension")
	return cmd
}

func newRenderDirCmd(opts *forgeOptions) *cobra.Command {
	var (
		varsPath   string
		failMode   string
		includeAll bool
		prune      bool
		noManifest bool
	)

	cmd := &cobra.Command{
		Use:   "render-dir <templates-dir> <output-dir>",
		Short: "Render every template under a directory",
		Long: "Render every file under templates-dir whose extension maps to an engine,\n" +
			"mirroring the tree into output-dir with the engine extension removed.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || args[0] == "" || args[1] == "" {
				return &engine.Error{
					Kind: engine.UsageError,
					Err:  errors.New("Usage: " + cmd.CommandPath() + " <templates-dir> <output-dir> [--vars vars.json]"),
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if failMode != "" {
				cfg.FailMode = failMode
			}
			renderer, err := opts.newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			set := map[string]any{}
			if varsPath != "" {
				if set, err = renderer.LoadVariables(varsPath); err != nil {
					return err
				}
			}

			templatesDir, outputDir := args[0], args[1]
			info, err := os.Stat(templatesDir)
			if err != nil {
				return &engine.Error{Kind: engine.FileReadError, Path: templatesDir, Err: err}
			}
			if !info.IsDir() {
				return &engine.Error{Kind: engine.FileReadError, Path: templatesDir, Err: errors.New("not a directory")}
			}

			summary, err := renderer.RenderDir(cmd.Context(), engine.DirJob{
				TemplateFS: os.DirFS(templatesDir),
				Root:       ".",
				OutputRoot: outputDir,
				Vars:       set,
				IncludeAll: includeAll,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d templates to %s (%d unchanged, %d skipped, %d failed)\n",
				summary.Rendered, outputDir, summary.Unchanged, summary.Skipped, summary.Failed)

			// A partial render would make every failed template look stale.
			if noManifest || summary.Failed > 0 {
				return nil
			}
			return updateManifest(cmd.OutOrStdout(), outputDir, summary.Outputs, prune)
		},
	}

	cmd.Flags().StringVar(&varsPath, "vars", "", "JSON object file with template variables")
	cmd.Flags().StringVar(&failMode, "fail-mode", "", "fast, end or best (overrides fail_mode)")
	cmd.Flags().BoolVar(&includeAll, "all", false, "render files with unmapped extensions through {{key}} substitution")
	cmd.Flags().BoolVar(&prune, "prune", false, "remove unmodified outputs of templates that no longer exist")
	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "do not read or write "+state.FileName+" in output-dir")
	return cmd
}

func newEnginesCmd(opts *forgeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List template engines and whether this build includes them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.configureRegistry(cfg); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, def := range opts.registry.Definitions() {
				status := color.GreenString("available")
				// Constructing checks command runtimes on PATH as well.
				if _, _, err := opts.registry.Resolve(def.Name); err != nil {
					status = color.RedString("unavailable")
					if def.Hint != "" {
						status += " (" + def.Hint + ")"
					}
				}
				exts := strings.Join(def.Extensions, " ")
				if exts == "" {
					exts = "-"
				}
				fmt.Fprintf(w, "%-12s %-11s %-24s %s\n", def.Name, def.Kind, exts, status)
			}
			return nil
		},
	}
}
