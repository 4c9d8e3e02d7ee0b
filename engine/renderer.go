package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cpcf/forge/postprocess"
	"github.com/cpcf/forge/vars"
	"github.com/cpcf/forge/write"
)

type FailureMode int

const (
	FailFast FailureMode = iota
	FailAtEnd
	BestEffort
)

// ParseFailureMode accepts "fast", "end" and "best".
func ParseFailureMode(s string) (FailureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast":
		return FailFast, nil
	case "end":
		return FailAtEnd, nil
	case "best":
		return BestEffort, nil
	}
	return FailFast, fmt.Errorf("unknown failure mode %q, want fast, end or best", s)
}

// FileJob is one template, one variables file and one output.
type FileJob struct {
	TemplatePath string
	OutputPath   string
	// VariablesPath is read and decoded when set; otherwise Vars is used.
	VariablesPath string
	Vars          map[string]any
	// Engine names the binding; empty selects it by template extension.
	Engine string
}

type Result struct {
	Definition   Definition
	TemplatePath string
	OutputPath   string
	Bytes        int
}

// DirJob renders a tree of templates into OutputRoot, mirroring paths.
type DirJob struct {
	TemplateFS fs.FS
	Root       string
	OutputRoot string
	Vars       map[string]any
	// IncludeAll renders files with unmapped extensions through the
	// fallback engine instead of skipping them.
	IncludeAll bool
}

type Summary struct {
	Rendered  int
	Unchanged int
	Skipped   int
	Failed    int
	// Outputs holds every rendered or unchanged file in walk order.
	Outputs []Result
}

type Renderer struct {
	logger         *slog.Logger
	registry       *Registry
	engines        *engineCache
	writer         write.Writer
	atomic         bool
	failMode       FailureMode
	postprocessors *postprocess.Chain
}

func NewRenderer(registry *Registry, opts ...Option) *Renderer {
	r := &Renderer{
		logger:         slog.Default(),
		registry:       registry,
		engines:        newEngineCache(registry),
		writer:         write.NewFileWriter(),
		failMode:       FailFast,
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve constructs the named engine ahead of any file I/O.
func (r *Renderer) Resolve(name string) (Definition, error) {
	def, _, err := r.engines.Get(name)
	return def, err
}

// LoadVariables reads and decodes a JSON variables file.
func (r *Renderer) LoadVariables(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: FileReadError, Path: path, Err: err}
	}
	set, err := vars.Decode(data)
	if err != nil {
		return nil, &Error{Kind: JSONParseError, Path: path, Err: err}
	}
	r.logger.Debug("loaded variables", "path", path, "keys", len(set))
	return set, nil
}

func (r *Renderer) RenderFile(ctx context.Context, job FileJob) (Result, error) {
	def, eng, err := r.engineFor(job.Engine, job.TemplatePath)
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("reading template", "path", job.TemplatePath, "engine", def.Name)
	text, err := os.ReadFile(job.TemplatePath)
	if err != nil {
		return Result{}, &Error{Kind: FileReadError, Path: job.TemplatePath, Err: err}
	}

	set := job.Vars
	if job.VariablesPath != "" {
		if set, err = r.LoadVariables(job.VariablesPath); err != nil {
			return Result{}, err
		}
	}
	if set == nil {
		set = vars.Empty()
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	content, err := r.render(def, eng, job.TemplatePath, string(text), set)
	if err != nil {
		return Result{}, err
	}
	content = r.postprocess(job.OutputPath, content)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := r.writeOutput(job.OutputPath, content, false); err != nil {
		return Result{}, err
	}

	r.logger.Info("rendered template", "template", job.TemplatePath, "output", job.OutputPath, "engine", def.Name)
	return Result{
		Definition:   def,
		TemplatePath: job.TemplatePath,
		OutputPath:   job.OutputPath,
		Bytes:        len(content),
	}, nil
}

func (r *Renderer) RenderDir(ctx context.Context, job DirJob) (Summary, error) {
	var (
		summary  Summary
		multiErr MultiError
	)

	root := job.Root
	if root == "" {
		root = "."
	}
	set := job.Vars
	if set == nil {
		set = vars.Empty()
	}

	err := fs.WalkDir(job.TemplateFS, root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			readErr := &Error{Kind: FileReadError, Path: p, Err: err}
			if r.failMode == FailFast {
				return readErr
			}
			summary.Failed++
			multiErr.Add(readErr)
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !job.IncludeAll && !r.registry.Claims(p) {
			r.logger.Debug("skipping file without engine", "path", p)
			summary.Skipped++
			return nil
		}

		res, changed, renderErr := r.renderTreeFile(job, root, p, set)
		if renderErr != nil {
			if r.failMode == FailFast {
				return renderErr
			}
			summary.Failed++
			multiErr.Add(renderErr)
			return nil
		}
		if changed {
			summary.Rendered++
		} else {
			summary.Unchanged++
		}
		summary.Outputs = append(summary.Outputs, res)
		return nil
	})
	if err != nil {
		return summary, err
	}

	if multiErr.HasErrors() && r.failMode != BestEffort {
		return summary, &multiErr
	}
	for _, e := range multiErr.Errors {
		r.logger.Warn("template failed", "error", e)
	}

	return summary, nil
}

// renderTreeFile renders one file of a DirJob and reports whether the output
// changed on disk.
func (r *Renderer) renderTreeFile(job DirJob, root, templatePath string, set map[string]any) (Result, bool, error) {
	def, eng, err := r.engineFor("", templatePath)
	if err != nil {
		return Result{}, false, err
	}

	text, err := fs.ReadFile(job.TemplateFS, templatePath)
	if err != nil {
		return Result{}, false, &Error{Kind: FileReadError, Path: templatePath, Err: err}
	}

	outputPath := r.resolveOutputPath(job.OutputRoot, root, templatePath)

	content, err := r.render(def, eng, templatePath, string(text), set)
	if err != nil {
		return Result{}, false, err
	}
	content = r.postprocess(outputPath, content)

	res := Result{Definition: def, TemplatePath: templatePath, OutputPath: outputPath, Bytes: len(content)}

	needsWrite, err := write.NeedsWrite(outputPath, content)
	if err != nil {
		return Result{}, false, &Error{Kind: FileWriteError, Path: outputPath, Err: err}
	}
	if !needsWrite {
		r.logger.Debug("output unchanged", "output", outputPath)
		return res, false, nil
	}

	if err := r.writeOutput(outputPath, content, true); err != nil {
		return Result{}, false, err
	}

	r.logger.Info("rendered template", "template", templatePath, "output", outputPath, "engine", def.Name)
	return res, true, nil
}

func (r *Renderer) engineFor(name, templatePath string) (Definition, Engine, error) {
	if name == "" {
		var ok bool
		if name, ok = r.registry.ForPath(templatePath); !ok {
			return Definition{}, nil, &Error{
				Kind:   EngineUnavailable,
				Path:   templatePath,
				Engine: filepath.Ext(templatePath),
				Err:    errors.New("no engine is mapped to this extension"),
			}
		}
	}
	return r.engines.Get(name)
}

// render calls the engine and normalises whatever it returns, including
// panics, into a RenderError.
func (r *Renderer) render(def Definition, eng Engine, templatePath, text string, set map[string]any) (content []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{Kind: RenderError, Path: templatePath, Engine: def.Name, Err: fmt.Errorf("%v", rec)}
		}
	}()

	out, err := eng.Render(text, set)
	if err != nil {
		return nil, &Error{Kind: RenderError, Path: templatePath, Engine: def.Name, Err: err}
	}
	return []byte(out), nil
}

func (r *Renderer) postprocess(outputPath string, content []byte) []byte {
	if !r.postprocessors.HasProcessors() {
		return content
	}

	processed, err := r.postprocessors.Process(outputPath, content)
	if err != nil {
		r.logger.Warn("post-processing failed", "path", outputPath, "error", err)
		return content
	}
	return processed
}

func (r *Renderer) writeOutput(outputPath string, content []byte, createDirs bool) error {
	err := r.writer.Write(outputPath, content, write.Options{
		CreateDirs: createDirs,
		Atomic:     r.atomic,
	})
	if err != nil {
		return &Error{Kind: FileWriteError, Path: outputPath, Err: err}
	}
	return nil
}

// resolveOutputPath maps root/a/b.html.jinja to outputRoot/a/b.html. Only an
// extension claimed by an engine is stripped.
func (r *Renderer) resolveOutputPath(outputRoot, root, templatePath string) string {
	var rel string
	switch {
	case templatePath == root:
		rel = path.Base(root)
	case root == ".":
		rel = templatePath
	default:
		rel = strings.TrimPrefix(templatePath, root+"/")
	}
	if r.registry.Claims(rel) {
		rel = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return filepath.Join(outputRoot, filepath.FromSlash(rel))
}
