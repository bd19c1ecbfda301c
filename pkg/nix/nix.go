// Package nix wraps the nix-hash tool used to content-address checkouts.
package nix

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

// EnvOverride names the environment variable that overrides tool detection.
const EnvOverride = "DEPNIX_NIX_HASH"

// Tool runs the nix-hash binary.
type Tool struct {
	Path string // absolute path to the nix-hash binary

	// Console receives relayed diagnostic output. Defaults to os.Stderr.
	Console io.Writer
}

// Detect locates a nix-hash binary. A non-empty bin (from developer config)
// wins, then the DEPNIX_NIX_HASH env var, then a PATH lookup for "nix-hash".
func Detect(bin string) (*Tool, error) {
	if bin == "" {
		bin = os.Getenv(EnvOverride)
	}
	if bin == "" {
		bin = "nix-hash"
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("nix-hash binary %q not found in PATH: %w", bin, err)
	}
	return &Tool{Path: path}, nil
}

func (t *Tool) console() io.Writer {
	if t.Console != nil {
		return t.Console
	}
	return os.Stderr
}

// HashTree computes the sha256 digest of the directory tree at path by
// running `nix-hash --type sha256 <path>`. Stdout is captured as the digest
// with its trailing newline trimmed; stderr is relayed to the console.
func (t *Tool) HashTree(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, t.Path, "--type", "sha256", path)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = t.console()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("nix-hash %s: %w", path, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Version returns the nix-hash version string, trimmed.
func (t *Tool) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, t.Path, "--version")
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
