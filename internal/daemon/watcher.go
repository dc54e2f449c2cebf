package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
)

// RecipeWatcher monitors the recipe directory and reports changed recipe
// files to the debouncer.
type RecipeWatcher struct {
	dir       string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
}

// NewRecipeWatcher creates a watcher over the recipe directory.
func NewRecipeWatcher(dir string, debouncer *Debouncer) (*RecipeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve recipe directory: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch recipe directory %s: %w", absDir, err)
	}

	return &RecipeWatcher{dir: absDir, watcher: watcher, debouncer: debouncer}, nil
}

// Run processes file system events until the context is canceled.
func (w *RecipeWatcher) Run(ctx context.Context) error {
	slog.Info("Watching recipe directory", logfields.Path(w.dir))
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isRecipeFile(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				slog.Debug("Recipe change detected",
					logfields.Path(event.Name),
					slog.String("op", event.Op.String()))
				w.debouncer.Notify(event.Name)
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				slog.Warn("Recipe file removed", logfields.Path(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Recipe watcher error", logfields.Error(err))
		}
	}
}

func isRecipeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
