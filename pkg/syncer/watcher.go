package syncer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/receiver"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultWatchDebounce coalesces bursts of filesystem events into one reload.
const DefaultWatchDebounce = 500 * time.Millisecond

// StoreWatcher reloads the thread store when the backing document changes on
// disk, so edits made outside this process (another editor instance, a git
// checkout) show up without waiting for a full poll cycle. It watches the
// document's parent directory because atomic saves replace the file by
// rename, which drops a watch placed on the file itself.
type StoreWatcher struct {
	store    *threadstore.Store
	receiver *receiver.Receiver
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *logrus.Entry

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// reloadMu serializes reload against Close so a debounce that already
	// fired cannot touch the store after shutdown.
	reloadMu sync.Mutex
	closed   bool
}

// NewStoreWatcher creates a watcher over the document at path. The watcher is
// inert until Start is called.
func NewStoreWatcher(store *threadstore.Store, r *receiver.Receiver, path string, debounce time.Duration) (*StoreWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	return &StoreWatcher{
		store:    store,
		receiver: r,
		path:     path,
		debounce: debounce,
		watcher:  fw,
		logger:   logging.NewLogger("store-watcher"),
	}, nil
}

// Start begins processing filesystem events. Idempotent.
func (w *StoreWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.WithField("path", w.path).Debug("Store watcher started")
}

// Close stops event processing and releases the underlying watcher.
func (w *StoreWatcher) Close() error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := w.watcher.Close()
	if cancel != nil {
		w.wg.Wait()
	}

	// Waits out an in-flight reload and fences off late timer fires.
	w.reloadMu.Lock()
	w.closed = true
	w.reloadMu.Unlock()
	return err
}

func (w *StoreWatcher) loop(ctx context.Context) {
	defer w.wg.Done()

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		}
	}
}

// scheduleReload arms (or re-arms) the debounce timer. A burst of events
// within the debounce window results in a single reload after it settles.
func (w *StoreWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *StoreWatcher) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	if w.closed {
		return
	}

	// Drain queued flushes first: the store's own saves also raise events
	// on this file, and a reload must not race a write still in flight.
	w.store.Sync()

	if data, err := os.ReadFile(w.path); err == nil && w.store.FlushedMatches(data) {
		w.logger.Debug("Ignoring own flush")
		return
	}

	if err := w.store.Reload(); err != nil {
		w.logger.WithError(err).Error("Failed to reload store after file change")
		return
	}
	w.logger.Info("Store reloaded after external change")
	w.receiver.RefreshComments()
}
