package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pkgbuilder/internal/install"
	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
)

// UninstallCmd implements the 'uninstall' command.
type UninstallCmd struct {
	Package string `arg:"" help:"Package to uninstall"`
}

func (u *UninstallCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	missing, err := install.Uninstall(cfg.Install.ManifestDir, u.Package)
	if err != nil {
		return err
	}
	for _, path := range missing {
		slog.Warn("Manifest entry was already gone", logfields.Path(path))
	}

	fmt.Printf("uninstalled %s\n", u.Package)
	return nil
}
