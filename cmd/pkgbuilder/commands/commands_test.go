package commands

import (
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

func TestInitWritesExampleRecipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fren.yaml")

	cmd := &InitCmd{Recipe: path}
	if err := cmd.Run(&Global{}, &CLI{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	r, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("generated recipe failed to load: %v", err)
	}
	if r.Package.Name != "fren" {
		t.Errorf("package name = %q, want fren", r.Package.Name)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fren.yaml")
	if err := (&InitCmd{Recipe: path}).Run(&Global{}, &CLI{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := (&InitCmd{Recipe: path}).Run(&Global{}, &CLI{}); err == nil {
		t.Fatal("expected error when overwriting without --force")
	}
	if err := (&InitCmd{Recipe: path, Force: true}).Run(&Global{}, &CLI{}); err != nil {
		t.Errorf("Run() with force error = %v", err)
	}
}

func TestLintAcceptsExampleRecipe(t *testing.T) {
	dir := t.TempDir()
	if err := recipe.InitExample(filepath.Join(dir, "fren.yaml"), false); err != nil {
		t.Fatalf("failed to write example recipe: %v", err)
	}

	cmd := &LintCmd{Path: dir}
	if err := cmd.Run(&Global{}, &CLI{}); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestLintReportsBrokenRecipe(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("package:\n  name: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &LintCmd{Path: dir}
	err := cmd.Run(&Global{}, &CLI{})
	if err == nil {
		t.Fatal("expected lint failure")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryRecipe {
		t.Errorf("category = %v, want %v", ferrors.CategoryOf(err), ferrors.CategoryRecipe)
	}
}

func TestLintMissingPath(t *testing.T) {
	cmd := &LintCmd{Path: filepath.Join(t.TempDir(), "nope")}
	err := cmd.Run(&Global{}, &CLI{})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	if ferrors.CategoryOf(err) != ferrors.CategoryNotFound {
		t.Errorf("category = %v, want %v", ferrors.CategoryOf(err), ferrors.CategoryNotFound)
	}
}
