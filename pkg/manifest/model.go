// Package manifest reads package description files (package.json or a YAML
// equivalent). The schema is passed through as-is: beyond being parseable,
// nothing is validated here.
package manifest

import "sort"

// Manifest is a dependency's own package description.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Description     string            `json:"description,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// Dependency is a single name/specifier pair from the dependency map.
type Dependency struct {
	Name string
	Spec string
}

// SortedDependencies returns the manifest's dependencies in lexical name
// order, giving walkers a deterministic traversal.
func (m *Manifest) SortedDependencies() []Dependency {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, Dependency{Name: name, Spec: m.Dependencies[name]})
	}
	return deps
}
