package library

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports audio files that appear in the music directory while
// the player is running (dropped in by the user or another tool).
type Watcher struct {
	fsw     *fsnotify.Watcher
	onTrack func(Track)
	done    chan struct{}
}

// NewWatcher starts watching the store's music directory. onTrack is
// called from the watcher goroutine for every new audio file.
func NewWatcher(store *Store, onTrack func(Track)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(store.MusicDir()); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		onTrack: onTrack,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !IsAudioFile(name) {
				continue
			}
			log.Printf("[LIBRARY] New file appeared: %s", name)
			w.onTrack(Track{Name: name, SourceRef: event.Name})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[LIBRARY] Watch error: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
