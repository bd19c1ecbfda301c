package fetch

import "github.com/depnix/depnix/pkg/manifest"

// Request identifies one dependency to resolve: where it will live relative
// to its referrer, what the referrer calls it, and the raw version specifier.
type Request struct {
	BaseDir string
	Name    string
	Spec    string
}

// Expr is the fetch directive consumed by expression emitters: everything a
// build tool needs to re-fetch the pinned source.
type Expr struct {
	URL  string `json:"url"`
	Rev  string `json:"rev,omitempty"`
	Hash string `json:"sha256"`
}

// Descriptor is the pipeline's result: the dependency's own manifest, an
// identifier derived from the referrer's name and specifier, the fetch
// directive, and the install location relative to the referrer.
type Descriptor struct {
	Name       string             `json:"name"`
	Manifest   *manifest.Manifest `json:"manifest"`
	Identifier string             `json:"identifier"`
	Source     Expr               `json:"src"`
	DestPath   string             `json:"destPath"`
}
