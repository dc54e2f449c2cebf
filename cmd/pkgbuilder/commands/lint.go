package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pkgbuilder/internal/desktop"
	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Path string `arg:"" help:"Recipe file or directory of recipes"`
}

func (l *LintCmd) Run(_ *Global, _ *CLI) error {
	paths, err := collectRecipePaths(l.Path)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return ferrors.NotFoundError("no recipe files found").
			WithContext("path", l.Path).Build()
	}

	problems := 0
	for _, path := range paths {
		problems += lintRecipe(path)
	}

	if problems > 0 {
		return ferrors.RecipeError("lint found problems").
			WithContext("count", fmt.Sprintf("%d", problems)).Build()
	}
	fmt.Printf("%d recipe(s) ok\n", len(paths))
	return nil
}

// lintRecipe checks one recipe file and prints findings. Returns the number
// of error-level problems.
func lintRecipe(path string) int {
	r, err := recipe.Load(path)
	if err != nil {
		fmt.Printf("%s: error: %v\n", path, err)
		return 1
	}

	problems := 0
	if r.Desktop != nil {
		content := desktop.Generate(r.Desktop)
		for _, finding := range desktop.Validate(content) {
			fmt.Printf("%s: %s: desktop entry %s: %s\n",
				path, finding.Severity, finding.Key, finding.Message)
			if finding.Severity == desktop.SeverityError {
				problems++
			}
		}
	}
	return problems
}

// collectRecipePaths expands a file or directory argument to recipe files.
func collectRecipePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ferrors.NotFoundError("path does not exist").
			WithContext("path", path).WithCause(err).Build()
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
