package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/depnix/depnix/pkg/git"
)

// requireGit skips the test if git is not available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

// testGit returns a git client whose binary is a shim that rewrites
// git:///path URLs back to plain /path before delegating to the real git.
// Specifier normalization maps file URLs to the git transport scheme, which
// has no server in tests; the shim lets the full pipeline run against local
// fixture repositories.
func testGit(t *testing.T) *git.Client {
	t.Helper()
	requireGit(t)

	script := filepath.Join(t.TempDir(), "git-shim")
	content := `#!/bin/sh
args=""
for a in "$@"; do
  case "$a" in
    git:///*) a="${a#git://}" ;;
  esac
  args="$args '$a'"
done
eval exec git $args
`
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return &git.Client{Path: script, Console: io.Discard}
}

// setupBareRepo creates a bare git repo whose single main commit contains a
// package.json manifest. It also creates a lightweight tag v1.2.0, an
// annotated tag v2.0, and a "feature" branch with one extra commit; after a
// fresh clone that branch exists only as origin/feature. Returns the bare
// repo path, the main commit hash, and the feature commit hash.
func setupBareRepo(t *testing.T) (repoDir, commit, featureCommit string) {
	t.Helper()

	workDir := filepath.Join(t.TempDir(), "work")

	for _, args := range [][]string{
		{"init", "--initial-branch=main", workDir},
		{"-C", workDir, "config", "user.email", "test@test.com"},
		{"-C", workDir, "config", "user.name", "Test"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	os.WriteFile(filepath.Join(workDir, "package.json"),
		[]byte(`{"name":"repo","version":"1.2.0","dependencies":{"left-pad":"^1.0.0"}}`), 0o644)
	os.WriteFile(filepath.Join(workDir, "README.md"), []byte("# test\n"), 0o644)

	for _, args := range [][]string{
		{"-C", workDir, "add", "."},
		{"-C", workDir, "commit", "-m", "initial commit"},
		{"-C", workDir, "tag", "v1.2.0"},
		{"-C", workDir, "tag", "-a", "v2.0", "-m", "version 2.0"},
		{"-C", workDir, "checkout", "-b", "feature"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	os.WriteFile(filepath.Join(workDir, "feature.txt"), []byte("feature\n"), 0o644)

	for _, args := range [][]string{
		{"-C", workDir, "add", "."},
		{"-C", workDir, "commit", "-m", "feature commit"},
		{"-C", workDir, "checkout", "main"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	commit = revParse(t, workDir, "main")
	featureCommit = revParse(t, workDir, "feature")

	bareDir := filepath.Join(t.TempDir(), "repo.git")
	if out, err := exec.Command("git", "clone", "--bare", workDir, bareDir).CombinedOutput(); err != nil {
		t.Fatalf("git clone --bare: %v\n%s", err, out)
	}

	return bareDir, commit, featureCommit
}

func revParse(t *testing.T, dir, ref string) string {
	t.Helper()
	out, err := exec.Command("git", "-C", dir, "rev-parse", ref).Output()
	if err != nil {
		t.Fatalf("git rev-parse %s: %v", ref, err)
	}
	return strings.TrimSpace(string(out))
}

// treeHasher is an in-process stand-in for the external hash tool: a sha256
// digest over sorted relative paths and file contents.
type treeHasher struct{}

func (treeHasher) HashTree(ctx context.Context, dir string) (string, error) {
	h := sha256.New()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return "", err
		}
		h.Write([]byte(f))
		h.Write(data)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

type failHasher struct{}

func (failHasher) HashTree(ctx context.Context, dir string) (string, error) {
	return "", errors.New("hash tool crashed")
}

// workspaceSnapshot records the fetch workspaces currently in the temp dir.
func workspaceSnapshot(t *testing.T) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	snap := make(map[string]bool)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), workspacePrefix) {
			snap[e.Name()] = true
		}
	}
	return snap
}

// assertNoNewWorkspaces fails if a fetch workspace created after the
// snapshot is still on disk.
func assertNoNewWorkspaces(t *testing.T, before map[string]bool) {
	t.Helper()
	for name := range workspaceSnapshot(t) {
		if !before[name] {
			t.Errorf("workspace %s left behind", name)
		}
	}
}

func TestFetch(t *testing.T) {
	repoDir, commit, featureCommit := setupBareRepo(t)
	gitClient := testGit(t)

	tests := map[string]struct {
		fragment string
		// wantRev is the exact expected revision; empty means "any
		// non-empty revision" (annotated tags resolve to the tag object).
		wantRev string
	}{
		"no fragment resolves HEAD": {
			fragment: "",
			wantRev:  commit,
		},
		"default branch": {
			fragment: "#main",
			wantRev:  commit,
		},
		"lightweight tag": {
			fragment: "#v1.2.0",
			wantRev:  commit,
		},
		"annotated tag": {
			fragment: "#v2.0",
		},
		"full commit hash": {
			fragment: "#" + commit,
			wantRev:  commit,
		},
		"remote-only branch via fallback": {
			fragment: "#feature",
			wantRev:  featureCommit,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			before := workspaceSnapshot(t)

			f := &Fetcher{Git: gitClient, Hasher: treeHasher{}}
			spec := "git+file://" + repoDir + tc.fragment

			desc, err := f.Fetch(context.Background(), Request{
				BaseDir: "pkgs",
				Name:    "dep",
				Spec:    spec,
			})
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}

			if tc.wantRev != "" && desc.Source.Rev != tc.wantRev {
				t.Errorf("Rev = %q, want %q", desc.Source.Rev, tc.wantRev)
			}
			if desc.Source.Rev == "" {
				t.Error("Rev is empty")
			}
			if desc.Source.URL != "git://"+repoDir {
				t.Errorf("URL = %q, want %q", desc.Source.URL, "git://"+repoDir)
			}
			if desc.Source.Hash == "" {
				t.Error("Hash is empty")
			}
			if desc.Identifier != "dep-"+spec {
				t.Errorf("Identifier = %q, want %q", desc.Identifier, "dep-"+spec)
			}
			if desc.DestPath != filepath.Join("pkgs", "dep") {
				t.Errorf("DestPath = %q, want %q", desc.DestPath, filepath.Join("pkgs", "dep"))
			}
			if desc.Manifest.Name != "repo" {
				t.Errorf("Manifest.Name = %q, want %q", desc.Manifest.Name, "repo")
			}
			if desc.Manifest.Version != "1.2.0" {
				t.Errorf("Manifest.Version = %q, want %q", desc.Manifest.Version, "1.2.0")
			}

			assertNoNewWorkspaces(t, before)
		})
	}
}

func TestFetchHashDeterministic(t *testing.T) {
	repoDir, _, _ := setupBareRepo(t)
	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}}
	spec := "git+file://" + repoDir + "#v1.2.0"

	first, err := f.Fetch(context.Background(), Request{BaseDir: ".", Name: "dep", Spec: spec})
	if err != nil {
		t.Fatalf("first Fetch() error: %v", err)
	}
	second, err := f.Fetch(context.Background(), Request{BaseDir: ".", Name: "dep", Spec: spec})
	if err != nil {
		t.Fatalf("second Fetch() error: %v", err)
	}

	if first.Source.Hash != second.Source.Hash {
		t.Errorf("hashes differ across clones of the same commit: %q vs %q",
			first.Source.Hash, second.Source.Hash)
	}
	if first.Source.Rev != second.Source.Rev {
		t.Errorf("revisions differ: %q vs %q", first.Source.Rev, second.Source.Rev)
	}
}

func TestFetchCloneFailure(t *testing.T) {
	gitClient := testGit(t)
	before := workspaceSnapshot(t)

	f := &Fetcher{Git: gitClient, Hasher: treeHasher{}}
	_, err := f.Fetch(context.Background(), Request{
		BaseDir: ".",
		Name:    "dep",
		Spec:    "git+file:///nonexistent-depnix-fixture",
	})
	if err == nil {
		t.Fatal("expected error for nonexistent repository, got nil")
	}

	var cloneErr *CloneError
	if !errors.As(err, &cloneErr) {
		t.Fatalf("error = %v (%T), want *CloneError", err, err)
	}
	if cloneErr.Status != 128 {
		t.Errorf("Status = %d, want 128", cloneErr.Status)
	}

	assertNoNewWorkspaces(t, before)
}

func TestFetchUnknownRevision(t *testing.T) {
	repoDir, _, _ := setupBareRepo(t)
	before := workspaceSnapshot(t)

	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}}
	_, err := f.Fetch(context.Background(), Request{
		BaseDir: ".",
		Name:    "dep",
		Spec:    "git+file://" + repoDir + "#nonexistent",
	})
	if err == nil {
		t.Fatal("expected error for unknown revision, got nil")
	}

	var revErr *RevisionError
	if !errors.As(err, &revErr) {
		t.Fatalf("error = %v (%T), want *RevisionError", err, err)
	}
	if !strings.Contains(err.Error(), "cannot find corresponding revision of nonexistent") {
		t.Errorf("error message = %q", err.Error())
	}

	assertNoNewWorkspaces(t, before)
}

func TestFetchMissingManifest(t *testing.T) {
	// A repo with no package.json fails at the manifest stage.
	workDir := filepath.Join(t.TempDir(), "work")
	requireGit(t)
	for _, args := range [][]string{
		{"init", "--initial-branch=main", workDir},
		{"-C", workDir, "config", "user.email", "test@test.com"},
		{"-C", workDir, "config", "user.name", "Test"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	os.WriteFile(filepath.Join(workDir, "README.md"), []byte("# bare\n"), 0o644)
	for _, args := range [][]string{
		{"-C", workDir, "add", "."},
		{"-C", workDir, "commit", "-m", "initial commit"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	before := workspaceSnapshot(t)

	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}}
	_, err := f.Fetch(context.Background(), Request{
		BaseDir: ".",
		Name:    "dep",
		Spec:    "git+file://" + workDir,
	})
	if err == nil {
		t.Fatal("expected error for missing manifest, got nil")
	}
	if !strings.Contains(err.Error(), "manifest") {
		t.Errorf("error message = %q, want mention of manifest", err.Error())
	}

	assertNoNewWorkspaces(t, before)
}

func TestFetchHashFailure(t *testing.T) {
	repoDir, _, _ := setupBareRepo(t)
	before := workspaceSnapshot(t)

	f := &Fetcher{Git: testGit(t), Hasher: failHasher{}}
	_, err := f.Fetch(context.Background(), Request{
		BaseDir: ".",
		Name:    "dep",
		Spec:    "git+file://" + repoDir,
	})
	if err == nil {
		t.Fatal("expected error from failing hasher, got nil")
	}

	var hashErr *HashError
	if !errors.As(err, &hashErr) {
		t.Fatalf("error = %v (%T), want *HashError", err, err)
	}

	assertNoNewWorkspaces(t, before)
}

func TestFetchSpecifierParseFailure(t *testing.T) {
	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}}
	_, err := f.Fetch(context.Background(), Request{BaseDir: ".", Name: "dep", Spec: "git+https://example.com/%zz"})
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestFetchExportDir(t *testing.T) {
	repoDir, _, _ := setupBareRepo(t)
	exportDir := t.TempDir()

	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}, ExportDir: exportDir}
	_, err := f.Fetch(context.Background(), Request{
		BaseDir: ".",
		Name:    "dep",
		Spec:    "git+file://" + repoDir,
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(exportDir, "dep", "README.md")); err != nil {
		t.Errorf("exported tree missing README.md: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exportDir, "dep", ".git")); !os.IsNotExist(err) {
		t.Error("exported tree still contains .git")
	}
}

func TestFetchCanceledContext(t *testing.T) {
	repoDir, _, _ := setupBareRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Fetcher{Git: testGit(t), Hasher: treeHasher{}}
	_, err := f.Fetch(ctx, Request{BaseDir: ".", Name: "dep", Spec: "git+file://" + repoDir})
	if err == nil {
		t.Fatal("expected error with canceled context, got nil")
	}
}
