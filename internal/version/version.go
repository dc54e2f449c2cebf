// Package version derives package version strings from git checkout state.
//
// A tagged checkout yields the tag with its leading prefix stripped and
// remaining separator characters normalized to dots. An untagged checkout
// yields the fallback format combining revision count and abbreviated hash,
// e.g. "r142.8f3a91c".
package version

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/pkgbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// Description captures the checkout state relevant to version derivation.
type Description struct {
	Tag         string // Nearest reachable tag, empty when none exists
	Distance    int    // Commits between HEAD and the tag, 0 when HEAD is tagged
	ShortHash   string // Abbreviated HEAD commit hash
	CommitCount int    // Total commits reachable from HEAD
}

// FromTag normalizes a tag into a version string: the leading prefix is
// stripped and remaining "-" separators become ".".
func FromTag(tag, prefix string) (string, error) {
	v := strings.TrimPrefix(tag, prefix)
	v = strings.ReplaceAll(v, "-", ".")
	if v == "" {
		return "", ferrors.ValidationError("tag normalizes to an empty version").
			WithContext("tag", tag).Build()
	}
	if strings.ContainsAny(v, " \t/") {
		return "", ferrors.ValidationError("tag normalizes to an invalid version").
			WithContext("tag", tag).Build()
	}
	return v, nil
}

// Fallback formats the untagged-checkout version: revision count plus
// abbreviated commit hash.
func Fallback(commitCount int, shortHash string) string {
	return fmt.Sprintf("r%d.%s", commitCount, shortHash)
}

// Derive resolves the version for a checkout according to the recipe's
// version configuration.
//
// Policy tag requires HEAD to sit exactly on a tag (or a pinned version);
// policy auto accepts any checkout state, appending ".r<distance>.<hash>"
// when HEAD has moved past the nearest tag and using Fallback when no tag
// is reachable.
func Derive(desc Description, cfg recipe.VersionConfig) (string, error) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "v"
	}

	switch cfg.Policy {
	case recipe.PolicyTag:
		if cfg.Pinned != "" {
			return cfg.Pinned, nil
		}
		if desc.Tag == "" {
			return "", ferrors.ValidationError("version policy tag requires a reachable tag").Build()
		}
		if desc.Distance != 0 {
			return "", ferrors.ValidationError("version policy tag requires HEAD to be tagged").
				WithContext("tag", desc.Tag).
				WithContext("distance", desc.Distance).Build()
		}
		return FromTag(desc.Tag, prefix)

	case recipe.PolicyAuto, "":
		if desc.Tag == "" {
			return Fallback(desc.CommitCount, desc.ShortHash), nil
		}
		base, err := FromTag(desc.Tag, prefix)
		if err != nil {
			return "", err
		}
		if desc.Distance == 0 {
			return base, nil
		}
		return fmt.Sprintf("%s.r%d.%s", base, desc.Distance, desc.ShortHash), nil

	default:
		return "", ferrors.ValidationError("unknown version policy").
			WithContext("policy", string(cfg.Policy)).Build()
	}
}
