package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/history"
	"git.home.luguber.info/inful/pkgbuilder/internal/pipeline"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Recipe        string `arg:"" help:"Recipe file to build"`
	KeepWorkspace bool   `help:"Keep the checkout directory after the build"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, err := recipe.Load(b.Recipe)
	if err != nil {
		return err
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := []pipeline.Option{pipeline.WithHistory(store)}
	if b.KeepWorkspace {
		opts = append(opts, pipeline.WithKeepWorkspace())
	}
	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	result, err := p.Build(context.Background(), r)
	if err != nil {
		return err
	}

	fmt.Println(result.Version)
	return nil
}
