package scene

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay groups the burst of events an editor or exporter produces
// while writing one file.
const settleDelay = 150 * time.Millisecond

// Watcher reports placements whose model file changed on disk.
type Watcher struct {
	fw     *fsnotify.Watcher
	byPath map[string]Placement
	log    *slog.Logger
}

// Watch starts watching the files of ps. Parent directories are watched so
// that files replaced by rename are still seen.
func Watch(ps []Placement, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{fw: fw, byPath: make(map[string]Placement), log: log}
	dirs := make(map[string]bool)
	for _, p := range ps {
		abs, err := filepath.Abs(p.Path)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", p.Path, err)
		}
		w.byPath[abs] = p
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run sends a placement on changed each time its file settles after a
// write. It returns when ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, changed chan<- Placement) {
	pending := make(map[string]bool)
	timer := time.NewTimer(settleDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, ok := w.byPath[path]; !ok {
				continue
			}
			pending[path] = true
			timer.Reset(settleDelay)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("model watcher", "error", err)

		case <-timer.C:
			for path := range pending {
				select {
				case changed <- w.byPath[path]:
				case <-ctx.Done():
					return
				}
			}
			clear(pending)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
