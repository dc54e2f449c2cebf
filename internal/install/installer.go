// Package install copies build artifacts to their declared destinations
// with explicit permission bits and records what was installed in a
// per-package manifest.
package install

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// Installer copies artifacts from a build tree into a destination root.
type Installer struct {
	destRoot string
}

// NewInstaller creates an installer targeting the given destination root
// (normally "/", a staging directory in tests and package builds).
func NewInstaller(destRoot string) *Installer {
	if destRoot == "" {
		destRoot = "/"
	}
	return &Installer{destRoot: destRoot}
}

// Install copies every artifact of the recipe from buildDir into the
// destination root, creating parent directories and applying the declared
// mode bits. Ownership is set to root:root only when running privileged.
// It returns a manifest describing the installed files.
func (in *Installer) Install(r *recipe.Recipe, version, buildDir string) (*Manifest, error) {
	manifest := &Manifest{
		Package:   r.Package.Name,
		Version:   version,
		Root:      in.destRoot,
		Installed: time.Now().UTC(),
	}

	for _, artifact := range r.Artifacts {
		entry, err := in.installArtifact(artifact, buildDir)
		if err != nil {
			return nil, err
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	slog.Info("Package installed",
		logfields.Package(r.Package.Name),
		logfields.Version(version),
		slog.Int("files", len(manifest.Entries)),
		logfields.Path(in.destRoot))
	return manifest, nil
}

// installArtifact copies a single artifact and returns its manifest entry.
func (in *Installer) installArtifact(artifact recipe.Artifact, buildDir string) (Entry, error) {
	mode, err := artifact.ParsedMode()
	if err != nil {
		return Entry{}, ferrors.InstallError("invalid artifact mode").
			WithContext("dest", artifact.Dest).WithCause(err).Build()
	}

	src := filepath.Join(buildDir, filepath.FromSlash(artifact.Source))
	dest := filepath.Join(in.destRoot, filepath.FromSlash(artifact.Dest))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Entry{}, ferrors.InstallError("failed to create destination directory").
			WithContext("dest", dest).WithCause(err).Build()
	}

	size, sum, err := copyFile(src, dest, mode)
	if err != nil {
		return Entry{}, ferrors.InstallError("failed to install artifact").
			WithContext("source", src).
			WithContext("dest", dest).WithCause(err).Build()
	}

	// Package files belong to root; only possible when running privileged.
	if os.Geteuid() == 0 {
		if err := os.Chown(dest, 0, 0); err != nil {
			return Entry{}, ferrors.InstallError("failed to set ownership").
				WithContext("dest", dest).WithCause(err).Build()
		}
	} else {
		slog.Debug("Skipping chown, not running as root", logfields.Dest(dest))
	}

	slog.Debug("Installed artifact",
		logfields.Dest(dest),
		logfields.Mode(fmt.Sprintf("%04o", uint32(mode))))

	return Entry{
		Dest:   dest,
		Mode:   fmt.Sprintf("%04o", uint32(mode)),
		Size:   size,
		SHA256: sum,
	}, nil
}

// copyFile copies src to dest with the given mode, returning size and checksum.
func copyFile(src, dest string, mode os.FileMode) (int64, string, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, "", err
	}
	defer srcFile.Close()

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, "", err
	}
	defer destFile.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(destFile, hasher), srcFile)
	if err != nil {
		return 0, "", err
	}

	// O_CREATE mode is masked by umask, enforce the declared bits explicitly.
	if err := os.Chmod(dest, mode); err != nil {
		return 0, "", err
	}

	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}
