package config

import (
	"github.com/fsnotify/fsnotify"
)

// ManifestWatcher notifies a callback whenever a manifest file on disk is
// rewritten, so a registered indexer's manifest can be hot-reloaded
// without restarting the process, per A1's "hot-reload of manifests via
// filesystem watch".
type ManifestWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchManifest watches path and invokes onChange once per Write event.
// Errors surfaced by the underlying watcher are silently dropped, matching
// the pack's own fsnotify usage for config hot-reload (a watch error
// doesn't interrupt indexing; the next successful event still fires).
func WatchManifest(path string, onChange func()) (*ManifestWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	mw := &ManifestWatcher{watcher: w, done: make(chan struct{})}
	go mw.run(onChange)
	return mw, nil
}

func (mw *ManifestWatcher) run(onChange func()) {
	defer close(mw.done)
	for {
		select {
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				onChange()
			}
		case _, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watch and waits for its goroutine to exit.
func (mw *ManifestWatcher) Close() error {
	err := mw.watcher.Close()
	<-mw.done
	return err
}
