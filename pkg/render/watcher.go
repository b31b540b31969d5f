package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"glscene/internal/logger"
	"glscene/pkg/signal"

	"github.com/fsnotify/fsnotify"
)

// ShaderChange is delivered when a watched shader file is written.
type ShaderChange struct {
	Name string
	Code string
}

// Watcher reports edits to shader files in a directory. Changed fires on the
// watcher goroutine, so slots must hand the change over to the render thread.
type Watcher struct {
	Changed signal.Event[ShaderChange]

	dir   string
	names map[string]bool
	log   *logger.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching dir for the given shader names.
func NewWatcher(dir string, names []string, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		names:   make(map[string]bool, len(names)),
		log:     log,
		watcher: fw,
		done:    make(chan struct{}),
	}
	for _, n := range names {
		w.names[n] = true
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !w.names[name] {
				continue
			}
			data, err := os.ReadFile(event.Name)
			if err != nil {
				w.log.Warnf("shader %s changed but could not be read: %v", name, err)
				continue
			}
			// editors often truncate before writing
			if len(data) == 0 {
				continue
			}
			w.log.Debugf("shader %s changed", name)
			w.Changed.Fire(ShaderChange{Name: name, Code: string(data)})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("shader watcher: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		w.Changed.Close()
	})
	return err
}
