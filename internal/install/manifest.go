package install

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
)

// Entry is one installed file.
type Entry struct {
	Dest   string `yaml:"dest"`
	Mode   string `yaml:"mode"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// Manifest records what an install produced, enabling uninstall.
type Manifest struct {
	Package   string    `yaml:"package"`
	Version   string    `yaml:"version"`
	Root      string    `yaml:"root"`
	Installed time.Time `yaml:"installed"`
	Entries   []Entry   `yaml:"entries"`
}

// ManifestPath returns the manifest file location for a package.
func ManifestPath(manifestDir, pkg string) string {
	return filepath.Join(manifestDir, pkg+".manifest.yaml")
}

// Write persists the manifest under manifestDir.
func (m *Manifest) Write(manifestDir string) error {
	if err := os.MkdirAll(manifestDir, 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := ManifestPath(manifestDir, m.Package)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	slog.Debug("Wrote install manifest", logfields.Package(m.Package), logfields.Path(path))
	return nil
}

// LoadManifest reads a package manifest from manifestDir.
func LoadManifest(manifestDir, pkg string) (*Manifest, error) {
	path := ManifestPath(manifestDir, pkg)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Uninstall removes every file in the manifest. Files already missing are
// reported, not treated as failures; the manifest file itself is removed
// last when every present file was deleted.
func Uninstall(manifestDir, pkg string) (missing []string, err error) {
	m, err := LoadManifest(manifestDir, pkg)
	if err != nil {
		return nil, err
	}

	for _, entry := range m.Entries {
		if removeErr := os.Remove(entry.Dest); removeErr != nil {
			if os.IsNotExist(removeErr) {
				missing = append(missing, entry.Dest)
				continue
			}
			return missing, fmt.Errorf("failed to remove %s: %w", entry.Dest, removeErr)
		}
		slog.Debug("Removed installed file", logfields.Dest(entry.Dest))
	}

	if err := os.Remove(ManifestPath(manifestDir, pkg)); err != nil {
		return missing, fmt.Errorf("failed to remove manifest: %w", err)
	}

	slog.Info("Package uninstalled",
		logfields.Package(pkg),
		slog.Int("files", len(m.Entries)),
		slog.Int("missing", len(missing)))
	return missing, nil
}
