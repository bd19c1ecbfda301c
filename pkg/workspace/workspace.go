// Package workspace scopes temporary directories to a function call.
package workspace

import (
	"fmt"
	"os"

	"github.com/depnix/depnix/pkg/fsutil"
)

// With creates a uniquely named temporary directory, invokes body with its
// path, and removes the directory tree before returning, whether body
// succeeds, returns an error, or panics. Removal is best-effort: a cleanup
// failure never masks body's error. Each call gets its own directory, so
// concurrent invocations do not share state.
func With(prefix string, body func(dir string) error) error {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	defer func() { _ = fsutil.RemoveTree(dir) }()

	return body(dir)
}
