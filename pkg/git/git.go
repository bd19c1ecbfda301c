// Package git wraps the git command-line tool for the fetch pipeline.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// EnvOverride names the environment variable that overrides git detection.
const EnvOverride = "DEPNIX_GIT"

// Client runs git subcommands. Progress output from clone and checkout is
// relayed to Console as it happens so long operations stay observable.
type Client struct {
	Path string // absolute path to the git binary

	// Console receives relayed subprocess output. Defaults to os.Stderr.
	Console io.Writer
}

// Detect locates a git binary. A non-empty bin (from developer config) wins,
// then the DEPNIX_GIT env var, then a PATH lookup for "git".
func Detect(bin string) (*Client, error) {
	if bin == "" {
		bin = os.Getenv(EnvOverride)
	}
	if bin == "" {
		bin = "git"
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("git binary %q not found in PATH: %w", bin, err)
	}
	return &Client{Path: path}, nil
}

func (c *Client) console() io.Writer {
	if c.Console != nil {
		return c.Console
	}
	return os.Stderr
}

// Clone clones url into dir. Both stdout and stderr are streamed to the
// console so clone progress is visible.
func (c *Client) Clone(ctx context.Context, dir, url string) error {
	cmd := exec.CommandContext(ctx, c.Path, "clone", url)
	cmd.Dir = dir
	cmd.Stdout = c.console()
	cmd.Stderr = c.console()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}

// RevParse resolves ref to a commit hash inside the repository at dir.
// Stdout is captured and trimmed; stderr is relayed to the console.
func (c *Client) RevParse(ctx context.Context, dir, ref string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, "rev-parse", ref)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = c.console()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Checkout moves the working tree at dir to rev, streaming output to the
// console.
func (c *Client) Checkout(ctx context.Context, dir, rev string) error {
	cmd := exec.CommandContext(ctx, c.Path, "checkout", rev)
	cmd.Dir = dir
	cmd.Stdout = c.console()
	cmd.Stderr = c.console()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git checkout %s: %w", rev, err)
	}
	return nil
}

// Version returns the git version string, trimmed.
func (c *Client) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", execError(err)
	}
	return strings.TrimSpace(string(out)), nil
}

// execError extracts stderr from an *exec.ExitError when available.
func execError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
