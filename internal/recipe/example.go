package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InitExample writes an example recipe file for a terminal file manager.
func InitExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("recipe file already exists: %s (use --force to overwrite)", path)
	}

	example := Recipe{
		Package: PackageMeta{
			Name:        "fren",
			Description: "A fast terminal file manager with image preview",
			URL:         "https://github.com/example/fren",
			License:     "MIT",
		},
		Version: VersionConfig{
			Policy: PolicyAuto,
			Prefix: "v",
		},
		Source: Source{
			URL:    "https://github.com/example/fren.git",
			Branch: "main",
		},
		Dependencies: Dependencies{
			Runtime: []string{"glibc", "xdg-utils", "chafa"},
			Build:   []string{"git", "cargo"},
			Optional: []OptionalDep{
				{Name: "ttf-nerd-fonts-symbols", Reason: "nerd font icon mode"},
				{Name: "noto-fonts-emoji", Reason: "emoji icon mode"},
			},
		},
		Build: BuildSpec{
			Release: true,
			Steps: []Step{
				{Run: []string{"cargo", "build", "--release", "--locked"}},
			},
		},
		Artifacts: []Artifact{
			{Source: "target/release/fren", Dest: "usr/bin/fren", Mode: "0755"},
			{Source: "fren.desktop", Dest: "usr/share/applications/fren.desktop", Mode: "0644"},
			{Source: "assets/fren.png", Dest: "usr/share/icons/hicolor/256x256/apps/fren.png", Mode: "0644"},
		},
		Desktop: &DesktopEntry{
			Name:        "fren",
			GenericName: "File Manager",
			Comment:     "Browse and manage files in the terminal",
			Exec:        "fren %U",
			Icon:        "fren",
			Terminal:    true,
			Categories:  []string{"System", "FileTools", "FileManager"},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}

	return nil
}
