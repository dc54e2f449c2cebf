package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

func TestRunExecutesStepsInOrder(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir)

	spec := recipe.BuildSpec{
		Steps: []recipe.Step{
			{Run: []string{"sh", "-c", "echo one > marker"}},
			{Run: []string{"sh", "-c", "echo two >> marker"}},
		},
	}

	results, err := runner.Run(t.Context(), spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(results))
	}

	data, err := os.ReadFile(filepath.Join(dir, "marker"))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("unexpected marker content: %q", string(data))
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir)

	spec := recipe.BuildSpec{
		Steps: []recipe.Step{
			{Run: []string{"sh", "-c", "exit 3"}},
			{Run: []string{"sh", "-c", "echo never > marker"}},
		},
	}

	results, err := runner.Run(t.Context(), spec)
	if err == nil {
		t.Fatal("expected error from failing step")
	}
	if len(results) != 1 {
		t.Fatalf("expected only the failing step result, got %d", len(results))
	}
	if results[0].ExitCode != 3 {
		t.Errorf("expected exit code 3 preserved, got %d", results[0].ExitCode)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "marker")); !os.IsNotExist(statErr) {
		t.Error("second step must not run after a failure")
	}

	classified, ok := ferrors.AsClassified(err)
	if !ok {
		t.Fatal("expected classified build error")
	}
	if classified.Category() != ferrors.CategoryBuild {
		t.Errorf("expected build category, got %s", classified.Category())
	}
	if classified.Context()["exit_code"] != 3 {
		t.Errorf("expected exit_code 3 in context, got %v", classified.Context()["exit_code"])
	}
}

func TestRunCapturesOutput(t *testing.T) {
	runner := NewRunner(t.TempDir())

	spec := recipe.BuildSpec{
		Steps: []recipe.Step{
			{Run: []string{"sh", "-c", "echo compiling"}},
		},
	}

	results, err := runner.Run(t.Context(), spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(results[0].Output, "compiling") {
		t.Errorf("expected captured output, got %q", results[0].Output)
	}
}

func TestRunReleaseAndStepEnv(t *testing.T) {
	runner := NewRunner(t.TempDir())

	spec := recipe.BuildSpec{
		Release: true,
		Steps: []recipe.Step{
			{
				Run: []string{"sh", "-c", "echo $PKGBUILDER_RELEASE $FEATURES"},
				Env: map[string]string{"FEATURES": "image-preview"},
			},
		},
	}

	results, err := runner.Run(t.Context(), spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(results[0].Output, "1 image-preview") {
		t.Errorf("expected release and step env visible, got %q", results[0].Output)
	}
}

func TestRunMissingCommand(t *testing.T) {
	runner := NewRunner(t.TempDir())

	spec := recipe.BuildSpec{
		Steps: []recipe.Step{
			{Run: []string{"definitely-not-a-real-tool-xyz"}},
		},
	}

	results, err := runner.Run(t.Context(), spec)
	if err == nil {
		t.Fatal("expected error for missing command")
	}
	if results[0].ExitCode != -1 {
		t.Errorf("expected exit code -1 for unstartable command, got %d", results[0].ExitCode)
	}
}
