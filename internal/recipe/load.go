package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// Load reads, normalizes, and validates a single recipe file.
// Environment variables in the document are expanded before unmarshal,
// matching the config loader's behavior.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var r Recipe
	if err := yaml.Unmarshal([]byte(expanded), &r); err != nil {
		return nil, ferrors.RecipeError("failed to parse recipe").
			WithContext("path", path).WithCause(err).Build()
	}

	r.path = path
	r.normalize()

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}

// LoadDir loads every *.yaml/*.yml recipe in a directory, sorted by package name.
// Duplicate package names across files are an error.
func LoadDir(dir string) ([]*Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe directory: %w", err)
	}

	seen := make(map[string]string) // package name -> recipe path
	var recipes []*Recipe
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		r, err := Load(path)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[r.Package.Name]; ok {
			return nil, ferrors.RecipeError("duplicate package name in recipe directory").
				WithContext("package", r.Package.Name).
				WithContext("first", prev).
				WithContext("second", path).Build()
		}
		seen[r.Package.Name] = path
		recipes = append(recipes, r)
	}

	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].Package.Name < recipes[j].Package.Name
	})
	return recipes, nil
}

// normalize applies recipe defaults after unmarshal.
func (r *Recipe) normalize() {
	if r.Version.Policy == "" {
		r.Version.Policy = PolicyAuto
	}
	if r.Version.Prefix == "" {
		r.Version.Prefix = "v"
	}
	for i := range r.Artifacts {
		if r.Artifacts[i].Mode == "" {
			if r.Artifacts[i].Kind() == KindBinary {
				r.Artifacts[i].Mode = "0755"
			} else {
				r.Artifacts[i].Mode = "0644"
			}
		}
	}
}
