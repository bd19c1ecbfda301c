// Package emit renders resolved dependency descriptors into build
// expression files.
package emit

import (
	"fmt"
	"sort"

	"github.com/depnix/depnix/pkg/fetch"
)

// Emitter renders a set of fetch descriptors into one output file.
type Emitter interface {
	// Name returns the emitter's registry name (e.g. "nix").
	Name() string
	// FileName returns the output filename the emitter writes.
	FileName() string
	// Render produces the file content for the given descriptors.
	Render(descs []*fetch.Descriptor) ([]byte, error)
}

// registry tracks Emitter instances by name
type registry map[string]Emitter

var defaultRegistry = make(registry)

// RegisteredEmitters returns a sorted list of all registered emitter names.
func RegisteredEmitters() []string {
	names := make([]string, 0, len(defaultRegistry))
	for name := range defaultRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetEmitter(name string) (Emitter, bool) {
	em, ok := defaultRegistry[name]
	return em, ok
}

// RegisterEmitter registers an emitter under its name.
// Note: this is NOT thread safe, and should only be called in init()
func RegisterEmitter(em Emitter) error {
	if _, ok := defaultRegistry[em.Name()]; ok {
		return fmt.Errorf("failed to register emitter %q: other emitter already registered", em.Name())
	}

	defaultRegistry[em.Name()] = em

	return nil
}
