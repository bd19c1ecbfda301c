// Package nix emits a deps.nix attribute set of fetchgit calls.
package nix

import (
	"fmt"
	"strings"

	"github.com/depnix/depnix/pkg/emit"
	"github.com/depnix/depnix/pkg/fetch"
)

func init() {
	emit.RegisterEmitter(&nixEmitter{})
}

type nixEmitter struct{}

func (e *nixEmitter) Name() string { return "nix" }

func (e *nixEmitter) FileName() string { return "deps.nix" }

// Render produces an expression of the form
//
//	{ fetchgit }:
//	{
//	  "name" = { ... src = fetchgit { url rev sha256 }; };
//	}
//
// keyed by dependency name. Descriptors are rendered in the order given;
// the generator walks dependencies in sorted order, so output is stable.
func (e *nixEmitter) Render(descs []*fetch.Descriptor) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# Generated by depnix. Do not edit.\n")
	b.WriteString("{ fetchgit }:\n\n{\n")

	for _, d := range descs {
		fmt.Fprintf(&b, "  %s = {\n", nixString(d.Name))
		if d.Manifest.Name != "" {
			fmt.Fprintf(&b, "    name = %s;\n", nixString(d.Manifest.Name))
		}
		if d.Manifest.Version != "" {
			fmt.Fprintf(&b, "    version = %s;\n", nixString(d.Manifest.Version))
		}
		fmt.Fprintf(&b, "    path = %s;\n", nixString(d.DestPath))
		b.WriteString("    src = fetchgit {\n")
		fmt.Fprintf(&b, "      url = %s;\n", nixString(d.Source.URL))
		if d.Source.Rev != "" {
			fmt.Fprintf(&b, "      rev = %s;\n", nixString(d.Source.Rev))
		}
		fmt.Fprintf(&b, "      sha256 = %s;\n", nixString(d.Source.Hash))
		b.WriteString("    };\n")
		b.WriteString("  };\n")
	}

	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// nixString quotes s as a Nix string literal.
func nixString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"${", `\${`,
		"\n", `\n`,
	)
	return `"` + r.Replace(s) + `"`
}
