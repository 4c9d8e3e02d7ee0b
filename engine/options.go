package engine

import (
	"log/slog"

	"github.com/cpcf/forge/postprocess"
	"github.com/cpcf/forge/write"
)

type Option func(*Renderer)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

func WithFailureMode(mode FailureMode) Option {
	return func(r *Renderer) {
		r.failMode = mode
	}
}

// WithAtomicWrites replaces outputs through a temp file and rename instead
// of truncating them in place.
func WithAtomicWrites(atomic bool) Option {
	return func(r *Renderer) {
		r.atomic = atomic
	}
}

func WithWriter(w write.Writer) Option {
	return func(r *Renderer) {
		r.writer = w
	}
}

// WithPostProcessor appends a processor applied to rendered content before
// it is written.
func WithPostProcessor(p postprocess.Processor) Option {
	return func(r *Renderer) {
		r.postprocessors.Add(p)
	}
}
