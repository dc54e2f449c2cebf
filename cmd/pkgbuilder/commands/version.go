package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// VersionCmd implements the 'version' command: a dry run that prints the
// version the recipe would build right now.
type VersionCmd struct {
	Recipe string `arg:"" help:"Recipe file to derive the version for"`
}

func (v *VersionCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, err := recipe.Load(v.Recipe)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ver, _, err := p.DeriveVersion(context.Background(), r)
	if err != nil {
		return err
	}

	fmt.Println(ver)
	return nil
}
