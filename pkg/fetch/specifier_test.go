package fetch

import "testing"

func TestParseSpecifier(t *testing.T) {
	tests := map[string]struct {
		raw           string
		wantURL       string
		wantCommitIsh string
		wantErr       bool
	}{
		"git+ssh rewrites to ssh": {
			raw:     "git+ssh://git@example.com/repo.git",
			wantURL: "ssh://git@example.com/repo.git",
		},
		"git+http rewrites to http": {
			raw:     "git+http://example.com/repo.git",
			wantURL: "http://example.com/repo.git",
		},
		"git+https rewrites to https": {
			raw:     "git+https://example.com/repo.git",
			wantURL: "https://example.com/repo.git",
		},
		"bare git stays git": {
			raw:     "git://example.com/repo.git",
			wantURL: "git://example.com/repo.git",
		},
		"unrecognized scheme falls back to git": {
			raw:     "svn+https://example.com/repo.git",
			wantURL: "git://example.com/repo.git",
		},
		"bare https falls back to git": {
			raw:     "https://example.com/repo.git",
			wantURL: "git://example.com/repo.git",
		},
		"fragment becomes commit-ish": {
			raw:           "git+https://example.com/repo.git#v1.2.0",
			wantURL:       "https://example.com/repo.git",
			wantCommitIsh: "v1.2.0",
		},
		"branch fragment": {
			raw:           "git://example.com/repo.git#feature/login",
			wantURL:       "git://example.com/repo.git",
			wantCommitIsh: "feature/login",
		},
		"no fragment means empty commit-ish": {
			raw:     "git+https://example.com/repo.git",
			wantURL: "https://example.com/repo.git",
		},
		"malformed URL": {
			raw:     "git+https://exa mple.com/%zz",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			spec, err := ParseSpecifier(tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseSpecifier(%q) error = %v, wantErr = %v", tc.raw, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if spec.URL != tc.wantURL {
				t.Errorf("URL = %q, want %q", spec.URL, tc.wantURL)
			}
			if spec.CommitIsh != tc.wantCommitIsh {
				t.Errorf("CommitIsh = %q, want %q", spec.CommitIsh, tc.wantCommitIsh)
			}
		})
	}
}

func TestQualifiedAndBareSchemesAgreeExceptScheme(t *testing.T) {
	// git+ssh://host/path and ssh://host/path (normalized to git://host/path)
	// must differ only in scheme.
	pairs := map[string][2]string{
		"ssh":   {"git+ssh://git@example.com/a/b.git#main", "ssh://git@example.com/a/b.git#main"},
		"http":  {"git+http://example.com/a/b.git#main", "http://example.com/a/b.git#main"},
		"https": {"git+https://example.com/a/b.git#main", "https://example.com/a/b.git#main"},
	}

	for name, pair := range pairs {
		t.Run(name, func(t *testing.T) {
			qualified, err := ParseSpecifier(pair[0])
			if err != nil {
				t.Fatalf("ParseSpecifier(%q) error: %v", pair[0], err)
			}
			bare, err := ParseSpecifier(pair[1])
			if err != nil {
				t.Fatalf("ParseSpecifier(%q) error: %v", pair[1], err)
			}

			stripScheme := func(u string) string {
				for i := range u {
					if u[i] == ':' {
						return u[i:]
					}
				}
				return u
			}
			if stripScheme(qualified.URL) != stripScheme(bare.URL) {
				t.Errorf("URLs differ beyond scheme: %q vs %q", qualified.URL, bare.URL)
			}
			if qualified.CommitIsh != bare.CommitIsh {
				t.Errorf("CommitIsh mismatch: %q vs %q", qualified.CommitIsh, bare.CommitIsh)
			}
		})
	}
}

func TestIsGitSpecifier(t *testing.T) {
	tests := map[string]struct {
		spec string
		want bool
	}{
		"git url": {
			spec: "git://example.com/repo.git",
			want: true,
		},
		"git+https url": {
			spec: "git+https://example.com/repo.git#v1.0.0",
			want: true,
		},
		"git+ssh url": {
			spec: "git+ssh://git@example.com/repo.git",
			want: true,
		},
		"semver range": {
			spec: "^1.2.3",
			want: false,
		},
		"plain https url": {
			spec: "https://example.com/tarball.tgz",
			want: false,
		},
		"local path": {
			spec: "../sibling",
			want: false,
		},
		"empty": {
			spec: "",
			want: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := IsGitSpecifier(tc.spec); got != tc.want {
				t.Errorf("IsGitSpecifier(%q) = %v, want %v", tc.spec, got, tc.want)
			}
		})
	}
}
