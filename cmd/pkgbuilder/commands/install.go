package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/history"
	"git.home.luguber.info/inful/pkgbuilder/internal/pipeline"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// InstallCmd implements the 'install' command.
type InstallCmd struct {
	Recipe string `arg:"" help:"Recipe file to build and install"`
	Root   string `help:"Override the configured install root"`
}

func (i *InstallCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if i.Root != "" {
		cfg.Install.Root = i.Root
	}

	r, err := recipe.Load(i.Recipe)
	if err != nil {
		return err
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	p, err := newPipeline(cfg, pipeline.WithHistory(store))
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	result, err := p.Install(context.Background(), r)
	if err != nil {
		return err
	}

	fmt.Printf("installed %s %s (%d files)\n",
		result.Package, result.Version, len(result.Manifest.Entries))
	return nil
}
