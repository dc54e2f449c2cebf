package gitsrc

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/pkgbuilder/internal/version"
)

// shortHashLen matches the abbreviated hash width used in derived versions.
const shortHashLen = 7

// Describe inspects a checkout and returns the state needed for version
// derivation: the nearest reachable tag, its distance from HEAD, the
// abbreviated HEAD hash, and the total commit count.
func Describe(repoPath string) (version.Description, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return version.Description{}, fmt.Errorf("failed to open checkout: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return version.Description{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tags, err := tagTargets(repo)
	if err != nil {
		return version.Description{}, fmt.Errorf("failed to read tags: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return version.Description{}, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	desc := version.Description{
		ShortHash: head.Hash().String()[:shortHashLen],
	}

	distance := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if desc.Tag == "" {
			if tag, ok := tags[c.Hash]; ok {
				desc.Tag = tag
				desc.Distance = distance
			}
		}
		distance++
		desc.CommitCount++
		return nil
	})
	if err != nil {
		return version.Description{}, fmt.Errorf("failed to walk history: %w", err)
	}

	return desc, nil
}

// tagTargets maps commit hashes to tag names, resolving annotated tags to
// their target commits. When several tags point at the same commit the
// lexically greatest name wins, which prefers newer versions under the
// usual vX.Y.Z naming.
func tagTargets(repo *git.Repository) (map[plumbing.Hash]string, error) {
	targets := make(map[plumbing.Hash]string)

	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, tagErr := repo.TagObject(hash); tagErr == nil {
			hash = tagObj.Target
		}
		name := ref.Name().Short()
		if existing, ok := targets[hash]; !ok || name > existing {
			targets[hash] = name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return targets, nil
}
