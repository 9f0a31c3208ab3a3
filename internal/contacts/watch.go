package contacts

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"employee-directory/internal/domain"
)

const reloadDebounce = 200 * time.Millisecond

// Live is a Matcher backed by an address book file that can be reloaded
// while the directory is served. A failed reload keeps the previous store.
type Live struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	store *Store
}

var _ Matcher = (*Live)(nil)

// OpenLive loads path once. Call Watch to follow later edits.
func OpenLive(path string, logger *zap.Logger) (*Live, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := LoadCSVFile(path)
	if err != nil {
		return nil, err
	}
	return &Live{path: filepath.Clean(path), logger: logger, store: store}, nil
}

func (l *Live) Store() *Store {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store
}

func (l *Live) MatchKeys(ctx context.Context, employees []domain.Employee) (map[string]struct{}, error) {
	return l.Store().MatchKeys(ctx, employees)
}

// Reload reads the file again and swaps the store in on success.
func (l *Live) Reload() error {
	store, err := LoadCSVFile(l.path)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.store = store
	l.mu.Unlock()
	l.logger.Info("contacts reloaded", zap.String("path", l.path), zap.Int("entries", store.Len()))
	return nil
}

// Watch reloads the store whenever the file is written, created or renamed
// into place, until ctx is done. The parent directory is watched so editors
// that replace the file are picked up.
func (l *Live) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("contacts: watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("contacts: watch %s: %w", filepath.Dir(l.path), err)
	}

	go l.run(ctx, w)
	return nil
}

func (l *Live) run(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != l.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending = time.After(reloadDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.logger.Warn("contacts watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := l.Reload(); err != nil {
				l.logger.Warn("contacts reload failed, keeping previous entries", zap.Error(err))
			}
		}
	}
}
