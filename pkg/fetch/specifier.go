package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

// Specifier is the parsed form of a git version specifier: a normalized
// fetch URL plus the optional commit-ish carried in the URL fragment.
type Specifier struct {
	// URL is the transport URL handed to git clone, fragment stripped.
	URL string

	// CommitIsh is the requested branch, tag, or hash. Empty means the
	// repository's default branch head.
	CommitIsh string
}

// schemeRewrites maps the git-qualified schemes to their bare transport
// schemes. Any scheme not listed here normalizes to plain "git".
var schemeRewrites = map[string]string{
	"git+ssh":   "ssh",
	"git+http":  "http",
	"git+https": "https",
}

// ParseSpecifier parses a raw version specifier such as
// "git+https://example.com/repo.git#v1.2.0" into a Specifier. The fragment,
// if present, becomes the commit-ish and is cleared before the URL is
// re-serialized.
func ParseSpecifier(raw string) (Specifier, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Specifier{}, fmt.Errorf("parsing specifier %q: %w", raw, err)
	}

	commitish := u.Fragment
	u.Fragment = ""

	if scheme, ok := schemeRewrites[u.Scheme]; ok {
		u.Scheme = scheme
	} else {
		u.Scheme = "git"
	}

	return Specifier{URL: u.String(), CommitIsh: commitish}, nil
}

// IsGitSpecifier reports whether raw is a git version specifier, i.e. a URL
// with a "git" or "git+<transport>" scheme. Registry version ranges and
// local paths are not.
func IsGitSpecifier(raw string) bool {
	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		return false
	}
	return scheme == "git" || strings.HasPrefix(scheme, "git+")
}
