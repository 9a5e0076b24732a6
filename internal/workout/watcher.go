package workout

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// Watch reloads the catalog from dir whenever a definition file changes,
// until ctx is done. A reload that fails keeps the current workouts.
// onReload, when non-nil, is called after every reload attempt.
func (c *Catalog) Watch(ctx context.Context, dir string, onReload func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()

		// Editors emit bursts of events per save; reload once they settle.
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Ext(ev.Name) != ".json" {
					continue
				}
				pending = time.After(reloadDelay)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("workout: watch %s: %v", dir, err)

			case <-pending:
				pending = nil
				ws, err := LoadDir(dir)
				if err != nil {
					log.Printf("workout: reload %s failed, keeping %d workouts: %v", dir, len(c.List()), err)
				} else {
					c.Replace(ws)
					log.Printf("workout: reloaded %d workouts from %s", len(ws), dir)
				}
				if onReload != nil {
					onReload(err)
				}
			}
		}
	}()

	return nil
}
