package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pkgbuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Package string `arg:"" optional:"" help:"Limit output to one package"`
	Limit   int    `short:"n" default:"20" help:"Maximum number of builds to show"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var records []history.Record
	if h.Package != "" {
		records, err = store.ByPackage(ctx, h.Package, h.Limit)
	} else {
		records, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-10s %-14s %-8s %s",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Package, rec.Version, rec.Outcome, rec.BuildID)
		if rec.Outcome == history.OutcomeFailure && rec.Error != "" {
			line += "\n    " + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}
