package recipe

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VersionPolicy selects how the package version is derived at build time.
type VersionPolicy string

const (
	// PolicyTag pins the version to the tag checked out at HEAD (release recipes).
	PolicyTag VersionPolicy = "tag"
	// PolicyAuto derives the version from describe output or the
	// revision-count fallback (development/-git recipes).
	PolicyAuto VersionPolicy = "auto"
)

// Recipe is a packaging descriptor: metadata, a git source, dependency
// declarations, build steps, and install artifacts.
type Recipe struct {
	Package      PackageMeta   `yaml:"package"`
	Version      VersionConfig `yaml:"version"`
	Source       Source        `yaml:"source"`
	Dependencies Dependencies  `yaml:"dependencies,omitempty"`
	Build        BuildSpec     `yaml:"build"`
	Artifacts    []Artifact    `yaml:"artifacts"`
	Desktop      *DesktopEntry `yaml:"desktop,omitempty"`

	path string // file the recipe was loaded from
}

// PackageMeta holds identifying package metadata.
type PackageMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	URL         string `yaml:"url,omitempty"`
	License     string `yaml:"license,omitempty"`
}

// VersionConfig controls version derivation.
type VersionConfig struct {
	Policy VersionPolicy `yaml:"policy,omitempty"` // tag|auto, defaults to auto
	Pinned string        `yaml:"pinned,omitempty"` // Overrides derivation when set with policy tag
	Prefix string        `yaml:"prefix,omitempty"` // Tag prefix stripped during normalization, defaults to "v"
}

// Source describes the git source to fetch.
type Source struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents source authentication configuration.
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// Dependencies declares the package dependency sets. These are metadata
// surfaced by lint/history; resolution is the system package manager's job.
type Dependencies struct {
	Runtime  []string      `yaml:"runtime,omitempty"`
	Build    []string      `yaml:"build,omitempty"`
	Optional []OptionalDep `yaml:"optional,omitempty"`
}

// OptionalDep is an optional dependency with the feature it enables.
type OptionalDep struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason,omitempty"`
}

// BuildSpec lists the build steps executed sequentially in the checkout.
type BuildSpec struct {
	Release bool   `yaml:"release"` // Adds the release-mode environment
	Steps   []Step `yaml:"steps"`
}

// Step is a single external command invocation.
type Step struct {
	Run []string          `yaml:"run"`
	Env map[string]string `yaml:"env,omitempty"`
}

// Name returns a short identifier for logs: the command word.
func (s Step) Name() string {
	if len(s.Run) == 0 {
		return ""
	}
	return s.Run[0]
}

// ArtifactKind classifies an install destination.
type ArtifactKind string

const (
	KindBinary  ArtifactKind = "binary"
	KindDesktop ArtifactKind = "desktop"
	KindIcon    ArtifactKind = "icon"
	KindOther   ArtifactKind = "other"
)

// Artifact is one install entry: a file in the build tree copied to a
// destination path (relative to the install root) with explicit mode bits.
type Artifact struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
	Mode   string `yaml:"mode"`
}

// ParsedMode parses the octal mode string (e.g. "0755").
func (a Artifact) ParsedMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(strings.TrimPrefix(a.Mode, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid artifact mode %q: %w", a.Mode, err)
	}
	if mode > 0o7777 {
		return 0, fmt.Errorf("invalid artifact mode %q: out of range", a.Mode)
	}
	return os.FileMode(mode), nil
}

// Kind classifies the artifact by its destination path.
func (a Artifact) Kind() ArtifactKind {
	dest := strings.TrimPrefix(a.Dest, "/")
	switch {
	case strings.HasPrefix(dest, "usr/bin/") || strings.HasPrefix(dest, "bin/"):
		return KindBinary
	case strings.Contains(dest, "share/applications/") && strings.HasSuffix(dest, ".desktop"):
		return KindDesktop
	case strings.Contains(dest, "share/icons/"):
		return KindIcon
	default:
		return KindOther
	}
}

// DesktopEntry holds the fields of a generated desktop-entry file.
type DesktopEntry struct {
	Name        string   `yaml:"name"`
	GenericName string   `yaml:"generic_name,omitempty"`
	Comment     string   `yaml:"comment,omitempty"`
	Exec        string   `yaml:"exec"`
	Icon        string   `yaml:"icon,omitempty"`
	Terminal    bool     `yaml:"terminal"`
	Categories  []string `yaml:"categories,omitempty"`
}

// Path returns the file the recipe was loaded from, empty for synthesized recipes.
func (r *Recipe) Path() string {
	return r.path
}

// VersionPrefix returns the configured tag prefix, defaulting to "v".
func (r *Recipe) VersionPrefix() string {
	if r.Version.Prefix != "" {
		return r.Version.Prefix
	}
	return "v"
}
