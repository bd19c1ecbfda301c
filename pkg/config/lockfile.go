package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LockFileName is the lockfile written next to the project config.
const LockFileName = "depnix.lock.toml"

// LockFile records the resolved state of every git dependency from the last
// generate run. It is an output only: depnix never consults it to skip a
// fetch.
type LockFile struct {
	Version int         `toml:"version"`
	Deps    []LockEntry `toml:"deps,omitempty"`
}

// LockEntry pins one dependency: the specifier as written, the normalized
// URL, the exact commit, and the content hash of the sanitized tree.
type LockEntry struct {
	Name string `toml:"name"`
	Spec string `toml:"spec"`
	URL  string `toml:"url"`
	Rev  string `toml:"rev,omitempty"`
	Hash string `toml:"hash"`
}

// LoadLockFile reads the lockfile at path. A missing file yields an empty
// lockfile, not an error.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LockFile{Version: 1}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lf := &LockFile{}
	if err := toml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return lf, nil
}

// SaveLockFile writes lf to path.
func SaveLockFile(path string, lf *LockFile) error {
	data, err := toml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
