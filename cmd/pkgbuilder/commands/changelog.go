package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/changelog"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// ChangelogCmd implements the 'changelog' command.
type ChangelogCmd struct {
	Recipe string `arg:"" help:"Recipe file to show release notes for"`
}

func (c *ChangelogCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, err := recipe.Load(c.Recipe)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ver, checkout, err := p.DeriveVersion(context.Background(), r)
	if err != nil {
		return err
	}

	notes, err := changelog.Notes(checkout, ver)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n\n%s\n", r.Package.Name, ver, notes)
	return nil
}
