package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// reloadDebounce coalesces editor save bursts (write, chmod, rename) into one reload.
const reloadDebounce = 100 * time.Millisecond

// PromptWatcher reloads a PromptStore whenever a template file in its directory changes.
type PromptWatcher struct {
	store   driven.PromptStore
	dir     string
	watcher *fsnotify.Watcher

	// OnReload is called after each reload. Optional.
	OnReload func()
}

// NewPromptWatcher starts watching dir. The directory must exist.
func NewPromptWatcher(store driven.PromptStore, dir string) (*PromptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &PromptWatcher{store: store, dir: dir, watcher: w}, nil
}

// Run processes file events until ctx is cancelled. It closes the watcher on return.
func (p *PromptWatcher) Run(ctx context.Context) error {
	defer p.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-p.watcher.Events:
			if !ok {
				return nil
			}
			if !isTemplate(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("prompt file changed: %s (%s)", filepath.Base(event.Name), event.Op)
			pending = time.After(reloadDebounce)

		case <-pending:
			pending = nil
			p.store.Reload()
			logger.Info("prompts reloaded from %s", p.dir)
			if p.OnReload != nil {
				p.OnReload()
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

func isTemplate(path string) bool {
	return strings.HasSuffix(path, ".txt")
}
