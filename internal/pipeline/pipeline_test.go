package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/pkgbuilder/internal/config"
	"git.home.luguber.info/inful/pkgbuilder/internal/desktop"
	"git.home.luguber.info/inful/pkgbuilder/internal/history"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// initSourceRepo creates a local git repository with one commit tagged v1.2.0.
func initSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.txt"), []byte("source\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("main.txt"); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	if _, err := repo.CreateTag("v1.2.0", hash, nil); err != nil {
		t.Fatalf("failed to tag: %v", err)
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Workspace: config.WorkspaceConfig{Dir: base, Persistent: true},
		Install: config.InstallConfig{
			Root:        filepath.Join(base, "root"),
			ManifestDir: filepath.Join(base, "manifests"),
		},
		Build: config.BuildConfig{MaxRetries: 1},
	}
}

func testRecipe(sourceURL string) *recipe.Recipe {
	return &recipe.Recipe{
		Package: recipe.PackageMeta{Name: "tool"},
		Version: recipe.VersionConfig{Policy: recipe.PolicyTag, Prefix: "v"},
		Source:  recipe.Source{URL: sourceURL},
		Build: recipe.BuildSpec{
			Steps: []recipe.Step{
				{Run: []string{"sh", "-c", "printf built > tool"}},
			},
		},
		Artifacts: []recipe.Artifact{
			{Source: "tool", Dest: "usr/bin/tool", Mode: "0755"},
		},
	}
}

func TestDeriveVersionFromTag(t *testing.T) {
	src := initSourceRepo(t)
	p, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	defer func() { _ = p.Close() }()

	ver, checkout, err := p.DeriveVersion(t.Context(), testRecipe(src))
	if err != nil {
		t.Fatalf("DeriveVersion() error = %v", err)
	}
	if ver != "1.2.0" {
		t.Errorf("version = %q, want %q", ver, "1.2.0")
	}
	if _, statErr := os.Stat(checkout); statErr != nil {
		t.Errorf("checkout missing: %v", statErr)
	}
}

func TestInstallEndToEnd(t *testing.T) {
	src := initSourceRepo(t)
	cfg := testConfig(t)

	store, err := history.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	p, err := New(cfg, WithHistory(store))
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	defer func() { _ = p.Close() }()

	result, err := p.Install(t.Context(), testRecipe(src))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if result.Version != "1.2.0" {
		t.Errorf("version = %q, want %q", result.Version, "1.2.0")
	}

	installed := filepath.Join(cfg.Install.Root, "usr/bin/tool")
	info, err := os.Stat(installed)
	if err != nil {
		t.Fatalf("installed binary missing: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %o, want 0755", info.Mode().Perm())
	}

	rec, events, err := store.GetByBuildID(t.Context(), result.BuildID)
	if err != nil {
		t.Fatalf("failed to get build record: %v", err)
	}
	if rec.Outcome != history.OutcomeSuccess {
		t.Errorf("outcome = %q, want %q", rec.Outcome, history.OutcomeSuccess)
	}
	if len(events) == 0 {
		t.Error("expected build events to be recorded")
	}
}

func TestBuildFailureRecorded(t *testing.T) {
	src := initSourceRepo(t)

	r := testRecipe(src)
	r.Build.Steps = []recipe.Step{{Run: []string{"sh", "-c", "exit 3"}}}

	store, err := history.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	p, err := New(testConfig(t), WithHistory(store))
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	defer func() { _ = p.Close() }()

	result, err := p.Build(t.Context(), r)
	if err == nil {
		t.Fatal("expected build failure")
	}
	if result == nil {
		t.Fatal("expected partial result on failure")
	}

	rec, _, err := store.GetByBuildID(t.Context(), result.BuildID)
	if err != nil {
		t.Fatalf("failed to get build record: %v", err)
	}
	if rec.Outcome != history.OutcomeFailure {
		t.Errorf("outcome = %q, want %q", rec.Outcome, history.OutcomeFailure)
	}
	if rec.Error == "" {
		t.Error("expected error text in record")
	}
}

func TestInstallGeneratesDesktopEntry(t *testing.T) {
	src := initSourceRepo(t)
	cfg := testConfig(t)

	r := testRecipe(src)
	r.Artifacts = append(r.Artifacts, recipe.Artifact{
		Source: "tool.desktop",
		Dest:   "usr/share/applications/tool.desktop",
		Mode:   "0644",
	})
	r.Desktop = &recipe.DesktopEntry{
		Name:     "tool",
		Exec:     "tool %U",
		Terminal: true,
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	defer func() { _ = p.Close() }()

	if _, err := p.Install(t.Context(), r); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	installed := filepath.Join(cfg.Install.Root, "usr/share/applications/tool.desktop")
	content, err := os.ReadFile(installed)
	if err != nil {
		t.Fatalf("installed desktop file missing: %v", err)
	}
	entries, err := desktop.Parse(string(content))
	if err != nil {
		t.Fatalf("installed desktop file unparseable: %v", err)
	}
	if entries["Exec"] != "tool %U" {
		t.Errorf("Exec = %q, want %q", entries["Exec"], "tool %U")
	}
}

func TestEphemeralWorkspaceCleanup(t *testing.T) {
	src := initSourceRepo(t)
	cfg := testConfig(t)
	cfg.Workspace.Persistent = false

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	if _, _, err := p.DeriveVersion(t.Context(), testRecipe(src)); err != nil {
		t.Fatalf("DeriveVersion() error = %v", err)
	}

	wsPath := p.ws.GetPath()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("workspace should be removed, stat err = %v", err)
	}
}
