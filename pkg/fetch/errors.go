package fetch

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoCheckout is returned when a clone completes but no checkout
// directory appears in the workspace.
var ErrNoCheckout = errors.New("no checkout directory found after clone")

// CloneError reports a git clone subprocess that exited non-zero.
type CloneError struct {
	Status int
	Err    error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone exited with status %d", e.Status)
}

func (e *CloneError) Unwrap() error { return e.Err }

// RevisionError reports a commit-ish that resolved neither directly nor via
// its remote-tracking name.
type RevisionError struct {
	Ref string
	Err error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("cannot find corresponding revision of %s", e.Ref)
}

func (e *RevisionError) Unwrap() error { return e.Err }

// CheckoutError reports a git checkout subprocess that exited non-zero.
type CheckoutError struct {
	Status int
	Err    error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout exited with status %d", e.Status)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// HashError reports a hashing subprocess that exited non-zero.
type HashError struct {
	Status int
	Err    error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash tool exited with status %d", e.Status)
}

func (e *HashError) Unwrap() error { return e.Err }

// exitStatus extracts the subprocess exit code from err, or -1 when the
// failure was not an exit status (e.g. the binary never started).
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
