package artifact

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher records paths touched under a project root while a step runs.
// It is an optimization hint for large trees: the recorded set lets the
// detector re-hash only touched files instead of the whole tree. The
// snapshot diff remains the source of truth; a watcher that misses events
// only costs a wider re-hash, never a missed artifact.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	touched map[string]bool
	done    chan struct{}
}

// Watch starts recording filesystem events under projectRoot, recursively
// registering existing non-ignored directories.
func Watch(projectRoot string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:    projectRoot,
		fsw:     fsw,
		touched: make(map[string]bool),
		done:    make(chan struct{}),
	}

	err = filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("register watch dirs: %w", err)
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if Ignored(rel) {
				continue
			}
			w.mu.Lock()
			w.touched[rel] = true
			w.mu.Unlock()

			// New directories need their own watch to see files inside.
			if event.Op&fsnotify.Create != 0 {
				_ = w.fsw.Add(event.Name)
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors degrade the hint, not correctness.
		}
	}
}

// Touched returns the relative paths recorded so far.
func (w *Watcher) Touched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.touched))
	for p := range w.touched {
		paths = append(paths, p)
	}
	return paths
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
