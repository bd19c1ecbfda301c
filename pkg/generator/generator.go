// Package generator walks a project's package manifest, resolves each git
// dependency through the fetch pipeline, and writes emitter outputs plus a
// lockfile recording the pinned state.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/depnix/depnix/pkg/config"
	"github.com/depnix/depnix/pkg/emit"
	"github.com/depnix/depnix/pkg/fetch"
	"github.com/depnix/depnix/pkg/manifest"
)

// Pipeline resolves one git dependency. Satisfied by *fetch.Fetcher.
type Pipeline interface {
	Fetch(ctx context.Context, req fetch.Request) (*fetch.Descriptor, error)
}

type Generator struct {
	Fetcher Pipeline

	// OutDir is where emitter outputs are written. Defaults to the project
	// directory.
	OutDir string

	// Emitters selects which registered emitters run. Empty means all.
	Emitters []string

	// Logger reports progress. Defaults to log.Default().
	Logger *log.Logger
}

// Result captures one generate run: the resolved descriptors in walk order,
// the lockfile describing them, and the output files written.
type Result struct {
	Descriptors []*fetch.Descriptor
	Lock        *config.LockFile
	Outputs     []string
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

// Run resolves every git dependency in m, strictly one at a time in sorted
// name order, then renders the selected emitters. Dependencies whose
// specifier is not a git URL are skipped. The first fetch failure aborts
// the run; no outputs are written in that case.
func (g *Generator) Run(ctx context.Context, projectDir string, m *manifest.Manifest) (*Result, error) {
	logger := g.logger()

	var descs []*fetch.Descriptor
	lf := &config.LockFile{Version: 1}

	for _, dep := range m.SortedDependencies() {
		if !fetch.IsGitSpecifier(dep.Spec) {
			logger.Debug("skipping non-git dependency", "name", dep.Name, "spec", dep.Spec)
			continue
		}

		desc, err := g.Fetcher.Fetch(ctx, fetch.Request{
			BaseDir: projectDir,
			Name:    dep.Name,
			Spec:    dep.Spec,
		})
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", dep.Name, err)
		}

		descs = append(descs, desc)
		lf.Deps = append(lf.Deps, config.LockEntry{
			Name: dep.Name,
			Spec: dep.Spec,
			URL:  desc.Source.URL,
			Rev:  desc.Source.Rev,
			Hash: desc.Source.Hash,
		})
	}

	outputs, err := g.render(projectDir, descs)
	if err != nil {
		return nil, err
	}

	return &Result{Descriptors: descs, Lock: lf, Outputs: outputs}, nil
}

func (g *Generator) render(projectDir string, descs []*fetch.Descriptor) ([]string, error) {
	outDir := g.OutDir
	if outDir == "" {
		outDir = projectDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	names := g.Emitters
	if len(names) == 0 {
		names = emit.RegisteredEmitters()
	}

	var outputs []string
	for _, name := range names {
		em, ok := emit.GetEmitter(name)
		if !ok {
			return nil, fmt.Errorf("no emitter registered for %q", name)
		}

		data, err := em.Render(descs)
		if err != nil {
			return nil, fmt.Errorf("rendering %s output: %w", name, err)
		}

		path := filepath.Join(outDir, em.FileName())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		outputs = append(outputs, path)
	}

	return outputs, nil
}
