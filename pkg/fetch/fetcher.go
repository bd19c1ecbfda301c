// Package fetch resolves a git version specifier into a pinned, content-
// addressed source descriptor: clone into a scoped workspace, disambiguate
// the requested revision, read the dependency's manifest, strip VCS
// bookkeeping, and hash the remaining tree.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/depnix/depnix/pkg/fsutil"
	"github.com/depnix/depnix/pkg/git"
	"github.com/depnix/depnix/pkg/manifest"
	"github.com/depnix/depnix/pkg/workspace"
)

// workspacePrefix names the temporary directories the pipeline runs in.
const workspacePrefix = "depnix-fetch-"

// Hasher computes a content digest of a directory tree.
type Hasher interface {
	HashTree(ctx context.Context, path string) (string, error)
}

// Fetcher runs the resolve pipeline. Git and Hasher are required; the zero
// values of the remaining fields select sensible defaults.
type Fetcher struct {
	Git    *git.Client
	Hasher Hasher

	// ManifestFile is the manifest filename read from the checkout root.
	// Defaults to package.json.
	ManifestFile string

	// ExportDir, when non-empty, receives a copy of each sanitized checkout
	// under the dependency's name before the workspace is torn down.
	ExportDir string

	// Logger reports stage progress. Defaults to log.Default().
	Logger *log.Logger
}

func (f *Fetcher) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

func (f *Fetcher) manifestFile() string {
	if f.ManifestFile != "" {
		return f.ManifestFile
	}
	return manifest.DefaultFileName
}

// Fetch resolves req into a descriptor. All filesystem state lives in a
// temporary workspace that is removed before Fetch returns, on success and
// on every failure path; no partial descriptor is ever returned.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Descriptor, error) {
	spec, err := ParseSpecifier(req.Spec)
	if err != nil {
		return nil, err
	}

	var desc *Descriptor
	err = workspace.With(workspacePrefix, func(dir string) error {
		d, err := f.run(ctx, dir, req, spec)
		if err != nil {
			return err
		}
		desc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// run executes the pipeline stages in order inside the workspace at ws.
// Each stage's result is passed forward explicitly; the first failure aborts
// the rest.
func (f *Fetcher) run(ctx context.Context, ws string, req Request, spec Specifier) (*Descriptor, error) {
	logger := f.logger()

	logger.Info("cloning repository", "name", req.Name, "url", spec.URL)
	if err := f.Git.Clone(ctx, ws, spec.URL); err != nil {
		return nil, &CloneError{Status: exitStatus(err), Err: err}
	}

	checkout, err := findCheckout(ws)
	if err != nil {
		return nil, err
	}

	rev, err := f.resolveRevision(ctx, checkout, spec.CommitIsh)
	if err != nil {
		return nil, err
	}

	if rev != "" {
		logger.Info("checking out revision", "rev", rev)
		if err := f.Git.Checkout(ctx, checkout, rev); err != nil {
			return nil, &CheckoutError{Status: exitStatus(err), Err: err}
		}
	}

	mf, err := manifest.Load(filepath.Join(checkout, f.manifestFile()))
	if err != nil {
		return nil, fmt.Errorf("dependency manifest: %w", err)
	}

	if err := Sanitize(checkout); err != nil {
		return nil, err
	}

	logger.Info("hashing checkout", "name", req.Name)
	hash, err := f.Hasher.HashTree(ctx, checkout)
	if err != nil {
		return nil, &HashError{Status: exitStatus(err), Err: err}
	}

	if f.ExportDir != "" {
		dest := filepath.Join(f.ExportDir, req.Name)
		logger.Debug("exporting checkout", "dest", dest)
		if err := fsutil.CopyTree(checkout, dest); err != nil {
			return nil, fmt.Errorf("exporting checkout: %w", err)
		}
	}

	return &Descriptor{
		Name:       req.Name,
		Manifest:   mf,
		Identifier: req.Name + "-" + req.Spec,
		Source:     Expr{URL: spec.URL, Rev: rev, Hash: hash},
		DestPath:   filepath.Join(req.BaseDir, req.Name),
	}, nil
}

// resolveRevision disambiguates commitish into an exact commit hash. It
// prefers a direct rev-parse of the requested name and falls back to the
// remote-tracking ref: immediately after a clone a requested branch may
// exist only as origin/<name>. An empty commitish that fails to resolve is
// not an error: the clone's default checkout state is kept and the empty
// revision tells the caller to skip the checkout stage.
func (f *Fetcher) resolveRevision(ctx context.Context, checkout, commitish string) (string, error) {
	branch := commitish
	if branch == "" {
		branch = "HEAD"
	}

	rev, err := f.Git.RevParse(ctx, checkout, branch)
	if err == nil {
		return rev, nil
	}
	if commitish == "" {
		return "", nil
	}

	rev, retryErr := f.Git.RevParse(ctx, checkout, "origin/"+commitish)
	if retryErr != nil {
		return "", &RevisionError{Ref: commitish, Err: err}
	}
	return rev, nil
}

// findCheckout returns the first directory entry inside the workspace,
// which is the working tree the clone produced.
func findCheckout(ws string) (string, error) {
	entries, err := os.ReadDir(ws)
	if err != nil {
		return "", fmt.Errorf("scanning workspace: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(ws, entry.Name()), nil
		}
	}
	return "", ErrNoCheckout
}
