package recipe

import (
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
)

// Validate checks the recipe for structural problems after normalization.
func (r *Recipe) Validate() error {
	if r.Package.Name == "" {
		return r.fail("package.name is required")
	}
	if strings.ContainsAny(r.Package.Name, " /") {
		return r.fail("package.name must not contain spaces or slashes")
	}
	if r.Source.URL == "" {
		return r.fail("source.url is required")
	}
	switch r.Version.Policy {
	case PolicyTag, PolicyAuto:
	default:
		return r.fail("version.policy must be tag or auto")
	}
	if len(r.Build.Steps) == 0 {
		return r.fail("build.steps must not be empty")
	}
	for i, step := range r.Build.Steps {
		if len(step.Run) == 0 {
			return r.failAt("build step has no command", "step", i)
		}
	}
	if len(r.Artifacts) == 0 {
		return r.fail("artifacts must not be empty")
	}
	for i, artifact := range r.Artifacts {
		if artifact.Source == "" {
			return r.failAt("artifact source is required", "artifact", i)
		}
		if artifact.Dest == "" {
			return r.failAt("artifact dest is required", "artifact", i)
		}
		if escapesRoot(artifact.Dest) {
			return r.failAt("artifact dest must not escape the install root", "artifact", i)
		}
		if _, err := artifact.ParsedMode(); err != nil {
			return ferrors.ValidationError("artifact mode must be octal").
				WithContext("recipe", r.path).
				WithContext("artifact", i).
				WithCause(err).Build()
		}
	}
	if r.Source.Auth != nil {
		switch r.Source.Auth.Type {
		case "", "none", "ssh", "token", "basic":
		default:
			return r.fail("source.auth.type must be none, ssh, token, or basic")
		}
	}
	return nil
}

func (r *Recipe) fail(msg string) error {
	return ferrors.ValidationError(msg).WithContext("recipe", r.path).Build()
}

func (r *Recipe) failAt(msg, key string, index int) error {
	return ferrors.ValidationError(msg).
		WithContext("recipe", r.path).
		WithContext(key, index).Build()
}

// escapesRoot reports whether a destination path climbs out of the install root.
func escapesRoot(dest string) bool {
	cleaned := path.Clean(strings.TrimPrefix(dest, "/"))
	return cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
