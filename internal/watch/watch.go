package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

// Watcher rebuilds the session tree whenever anything under the sessions
// directory changes and pushes the new tree to Updates. Rebuilds are
// debounced: a burst of field-file writes from one Save collapses into a
// single rebuild.
type Watcher struct {
	Store   *store.Store
	Debounce time.Duration
	Updates chan *Tree
	Errors  chan error

	fsw  *fsnotify.Watcher
	stop chan struct{}
}

// New creates a Watcher. Call Start to begin watching.
func New(st *store.Store) *Watcher {
	return &Watcher{
		Store:    st,
		Debounce: 150 * time.Millisecond,
		Updates:  make(chan *Tree, 1),
		Errors:   make(chan error, 1),
		stop:     make(chan struct{}),
	}
}

// Start begins watching the sessions directory recursively and emits an
// initial tree build immediately. It returns once the watcher is armed;
// the rebuild loop runs in a background goroutine until Stop is called.
func (w *Watcher) Start() error {
	if err := w.Store.EnsureScopeDir(); err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := w.addTreeWatches(); err != nil {
		fsw.Close()
		return err
	}

	if tree, err := Build(w.Store); err == nil {
		w.Updates <- tree
	}

	go w.loop()
	return nil
}

// addTreeWatches watches the sessions directory and every existing session
// subdirectory; fsnotify does not recurse, so new session directories are
// picked up as Create events on the sessions dir and added individually.
func (w *Watcher) addTreeWatches() error {
	root := filepath.Join(w.Store.Root, constants.SessionsDir)
	if err := w.fsw.Add(root); err != nil {
		return err
	}
	sessions, err := w.Store.LoadAll()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		_ = w.fsw.Add(filepath.Join(root, sess.ID))
	}
	return nil
}

func (w *Watcher) loop() {
	var pending bool
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				_ = w.fsw.Add(ev.Name)
			}
			if !pending {
				pending = true
				timer.Reset(w.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-timer.C:
			pending = false
			if tree, err := Build(w.Store); err == nil {
				select {
				case w.Updates <- tree:
				default:
					// Drop an unread tree in favor of the freshest one.
					select {
					case <-w.Updates:
					default:
					}
					w.Updates <- tree
				}
			}
		case <-w.stop:
			w.fsw.Close()
			return
		}
	}
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	close(w.stop)
}
