package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// HistoryWatcher reports results appended to a ResultStore by other
// processes, typically a running game.
type HistoryWatcher struct {
	store   ResultStore
	watcher *fsnotify.Watcher
	lastID  string
	seen    int
}

// WatchHistory starts watching store. Results already on disk count as seen.
// The store file is replaced atomically, so the directory is watched rather
// than the file itself.
func WatchHistory(store ResultStore) (*HistoryWatcher, error) {
	existing, err := store.List()
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(store.Path()), err)
	}
	w := &HistoryWatcher{store: store, watcher: watcher}
	w.markSeen(existing)
	return w, nil
}

func (w *HistoryWatcher) markSeen(results []Result) {
	w.seen = len(results)
	if len(results) > 0 {
		w.lastID = results[len(results)-1].SessionID
	}
}

// fresh returns the results after the last one seen.
func (w *HistoryWatcher) fresh(results []Result) []Result {
	if w.lastID == "" {
		if len(results) > w.seen {
			return results[w.seen:]
		}
		return nil
	}
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].SessionID == w.lastID {
			return results[i+1:]
		}
	}
	// Everything we knew about was rotated out.
	return results
}

// Run calls onNew with newly appended results until ctx is cancelled.
func (w *HistoryWatcher) Run(ctx context.Context, onNew func([]Result)) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.store.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			results, err := w.store.List()
			if err != nil {
				log.Warn().Err(err).Msg("failed to reload history")
				continue
			}
			if added := w.fresh(results); len(added) > 0 {
				w.markSeen(results)
				onNew(added)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("history watcher error")
		}
	}
}

// Close stops watching without running.
func (w *HistoryWatcher) Close() error {
	return w.watcher.Close()
}
