package roster

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a roster override file into a Registry whenever it changes.
// The parent directory is watched so editors that save via rename still
// trigger a reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	registry *Registry
	Reloaded chan *Catalog
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	done     chan struct{}
}

func NewWatcher(path string, registry *Registry) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	clean := filepath.Clean(path)
	if err := w.Add(filepath.Dir(clean)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		path:     clean,
		registry: registry,
		Reloaded: make(chan *Catalog, 4),
		Errors:   make(chan error, 4),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloaded)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	// A single save arrives as a burst of events; reload once the file has
	// been quiet for the debounce window.
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(100 * time.Millisecond)
		case <-debounce.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.publishErr(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cat, err := LoadFile(w.path)
	if err != nil {
		log.Printf("[ROSTER] reload rejected: %v", err)
		w.publishErr(err)
		return
	}
	w.registry.Swap(cat)
	log.Printf("[ROSTER] reloaded %s: %d characters, %d difficulties", w.path, len(cat.Characters), len(cat.Difficulties))
	select {
	case w.Reloaded <- cat:
	default:
	}
}

func (w *Watcher) publishErr(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
