package fetch

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/depnix/depnix/pkg/fsutil"
)

// vcsName is the bookkeeping entry git leaves in working trees. Usually a
// directory; submodules and linked worktrees use a .git file instead.
const vcsName = ".git"

// collectVCSEntries walks the tree rooted at root and returns the paths of
// every directory and file named .git. Bookkeeping directories are not
// descended into; nested ones (e.g. inside vendored submodules) are still
// found because the walk covers the whole working tree.
func collectVCSEntries(root string) (dirs, files []string, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Name() != vcsName {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return fs.SkipDir
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s for VCS entries: %w", root, err)
	}
	return dirs, files, nil
}

// Sanitize removes git bookkeeping directories and files from the tree at
// root so its content hash depends only on the checked-out sources, not on
// clone-specific metadata. It is idempotent: a second run finds nothing to
// remove.
func Sanitize(root string) error {
	dirs, files, err := collectVCSEntries(root)
	if err != nil {
		return err
	}
	for _, path := range append(dirs, files...) {
		if err := fsutil.RemoveTree(path); err != nil {
			return fmt.Errorf("sanitizing checkout: %w", err)
		}
	}
	return nil
}
