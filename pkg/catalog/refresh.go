package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadFunc is notified after every reload attempt.
type ReloadFunc func(source string, snap Snapshot, rep DecodeReport, err error)

// Refresher reloads a Catalog from a Source. A failed load keeps the
// previous snapshot.
type Refresher struct {
	catalog  *Catalog
	source   Source
	logger   *zap.Logger
	onReload ReloadFunc

	mu sync.Mutex // serialize reloads
}

// NewRefresher creates a Refresher. onReload may be nil.
func NewRefresher(cat *Catalog, src Source, logger *zap.Logger, onReload ReloadFunc) *Refresher {
	return &Refresher{
		catalog:  cat,
		source:   src,
		logger:   logger,
		onReload: onReload,
	}
}

// Reload loads the source once and installs the result.
func (r *Refresher) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	snap, rep, err := r.source.Load(ctx)
	if r.onReload != nil {
		r.onReload(r.source.Name(), snap, rep, err)
	}
	if err != nil {
		r.logger.Warn("catalog reload failed, keeping previous snapshot",
			zap.String("source", r.source.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("reload %s catalog: %w", r.source.Name(), err)
	}

	r.catalog.Replace(snap)
	r.logger.Info("catalog reloaded",
		zap.String("source", r.source.Name()),
		zap.Int("lenses", len(snap.Lenses)),
		zap.Int("cameras", len(snap.Cameras)),
		zap.Int("rentals", len(snap.Rentals)),
		zap.Int("dropped", rep.Dropped()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Run reloads every interval until ctx is cancelled. A non-positive interval
// returns immediately.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Reload(ctx)
		}
	}
}

// Watch calls onChange when the file at path is written, created or renamed
// into place. Bursts of events within debounce collapse into one call.
// It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	// Watch the directory so editors that replace the file are still seen.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("catalog: watch %q: %w", target, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("catalog: watcher: %w", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, onChange)
			mu.Unlock()
		}
	}
}
