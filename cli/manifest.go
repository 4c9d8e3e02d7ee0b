package cli

import (
	"fmt"
	"io"

	"github.com/cpcf/forge/engine"
	"github.com/cpcf/forge/state"
)

// updateManifest records outputs in the manifest under outputDir and reports,
// or with prune removes, outputs of templates that no longer exist.
func updateManifest(w io.Writer, outputDir string, outputs []engine.Result, prune bool) error {
	mm := state.NewManager(outputDir)
	previous, err := mm.Load()
	if err != nil {
		return err
	}

	current := state.New()
	for _, res := range outputs {
		if err := mm.Record(current, res.OutputPath, res.TemplatePath, res.Definition.Name); err != nil {
			return err
		}
	}

	stale := state.Stale(previous, current)
	if prune {
		result, err := mm.Prune(stale)
		for _, p := range result.Removed {
			fmt.Fprintf(w, "removed %s\n", p)
		}
		for _, p := range result.Modified {
			fmt.Fprintf(w, "kept %s (modified since it was rendered)\n", p)
		}
		if err != nil {
			return err
		}
	} else {
		// Unpruned outputs stay tracked so later runs keep reporting them.
		for _, entry := range stale {
			fmt.Fprintf(w, "stale %s (template %s is gone)\n", entry.Path, entry.Template)
			current.Entries[entry.Path] = entry
		}
	}

	return mm.Save(current)
}
