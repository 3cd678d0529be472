// Package filesystem ingests files from a watched directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driving"
	"github.com/custodia-labs/docctx/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher ingests supported files under a root directory, once on Scan and
// continuously while Run is active. Hidden files and directories are skipped.
// Deletions are not propagated; removing a document stays an explicit action.
type Watcher struct {
	root      string
	docs      driving.DocumentService
	limiter   *rate.Limiter
	debounce  time.Duration
	exts      map[string]bool
	onOutcome func(domain.IngestOutcome)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRate limits event-driven ingestion to perSecond files per second.
func WithRate(perSecond float64) Option {
	return func(w *Watcher) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOutcomeHandler registers fn to receive every ingestion outcome.
func WithOutcomeHandler(fn func(domain.IngestOutcome)) Option {
	return func(w *Watcher) {
		w.onOutcome = fn
	}
}

// New creates a watcher for root feeding docs.
func New(root string, docs driving.DocumentService, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		docs:     docs,
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
		debounce: DefaultDebounce,
		exts:     make(map[string]bool),
	}
	for _, ext := range docs.SupportedFormats() {
		w.exts[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Validate checks that the root exists and is a directory.
func (w *Watcher) Validate() error {
	info, err := os.Stat(w.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, w.root)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.root)
	}
	return nil
}

// Scan ingests every eligible file currently under root.
func (w *Watcher) Scan(ctx context.Context) ([]domain.IngestOutcome, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scanning %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.isHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.eligible(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcomes := w.docs.IngestMany(ctx, paths)
	for _, o := range outcomes {
		w.report(o)
	}
	return outcomes, nil
}

// Run watches root until ctx is cancelled. Returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Validate(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	logger.Info("watching %s", w.root)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.isHidden(event.Name) {
					if err := w.addTree(fw, event.Name); err != nil {
						logger.Warn("watching new directory %s: %v", event.Name, err)
					}
					continue
				}
			}
			if path, ok := w.handleEvent(event); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-ticker.C:
			for path, at := range pending {
				if time.Since(at) < w.debounce {
					continue
				}
				delete(pending, path)
				if err := w.ingest(ctx, path); err != nil {
					return nil
				}
			}
		}
	}
}

// addTree registers dir and its non-hidden subdirectories.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent returns the path to ingest for a filesystem event, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	if !w.eligible(event.Name) {
		return "", false
	}
	return event.Name, true
}

// ingest waits for the rate limiter and ingests one file.
// Returns an error only when ctx is done.
func (w *Watcher) ingest(ctx context.Context, path string) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	outcome := domain.IngestOutcome{JobID: uuid.NewString(), Path: path}
	outcome.DocumentID, outcome.Err = w.docs.Ingest(ctx, path)
	outcome.Duration = time.Since(start)
	w.report(outcome)
	return nil
}

func (w *Watcher) report(o domain.IngestOutcome) {
	if o.Err != nil {
		logger.Warn("job %s: %s: %v", o.JobID, o.Path, o.Err)
	} else {
		logger.Info("job %s: %s -> %s", o.JobID, o.Path, o.DocumentID)
	}
	if w.onOutcome != nil {
		w.onOutcome(o)
	}
}

// eligible reports whether path is a visible file with a supported extension.
func (w *Watcher) eligible(path string) bool {
	if w.isHidden(path) {
		return false
	}
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// isHidden checks path components below root.
func (w *Watcher) isHidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return isHidden(rel)
}

// isHidden reports whether any component of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
