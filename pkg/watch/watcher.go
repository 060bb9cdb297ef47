package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/orphan/internal/scanner"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/panbanda/orphan/pkg/project"
	"github.com/spf13/afero"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors a project tree and reports batches of changes that can
// alter the analysis result.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	fs        afero.Fs
	scanner   *scanner.Scanner
	config    *config.Config
	debounce  time.Duration
	root      string
	out       io.Writer
	callback  func(changed []string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithOutput sets where status lines are written. Defaults to stdout.
func WithOutput(out io.Writer) Option {
	return func(w *Watcher) {
		w.out = out
	}
}

// NewWatcher creates a watcher for the project rooted at root.
func NewWatcher(root string, cfg *config.Config, debounce time.Duration, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fs := afero.NewOsFs()
	w := &Watcher{
		fsWatcher: fsWatcher,
		fs:        fs,
		scanner:   scanner.NewScanner(fs, cfg),
		config:    cfg,
		debounce:  debounce,
		root:      root,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.scanner.LoadGitignore(root)
	return w, nil
}

// SetCallback sets the function called with the sorted project-relative
// paths of each settled batch of changes.
func (w *Watcher) SetCallback(cb func(changed []string)) {
	w.mu.Lock()
	w.callback = cb
	w.mu.Unlock()
}

// Start watches the project until ctx is cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(w.out, "Watching for changes in %s...\n", w.root)
	color.New(color.FgCyan).Fprintln(w.out, "Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.New(color.FgRed).Fprintf(w.out, "Watch error: %v\n", err)
		}
	}
}

// addTree registers dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return afero.Walk(w.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if rel := w.rel(p); rel != "" && w.scanner.IsExcludedDir(rel) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(p)
	})
}

// handleEvent records a change when it can affect the analysis.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel := w.rel(event.Name)
	if rel == "" || w.underExcludedDir(rel) {
		return
	}

	relevant := w.scanner.IsSourceFile(rel) || w.isControlFile(rel)
	if event.Has(fsnotify.Create) {
		if info, err := w.fs.Stat(event.Name); err == nil && info.IsDir() {
			if w.scanner.IsExcludedDir(rel) {
				return
			}
			_ = w.addTree(event.Name)
			relevant = true
		}
	}
	// A removed directory can no longer be inspected.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && path.Ext(rel) == "" {
		relevant = true
	}
	if !relevant {
		return
	}

	w.mu.Lock()
	w.pending[rel] = time.Now()
	w.mu.Unlock()
}

// isControlFile reports whether rel configures the analysis itself.
func (w *Watcher) isControlFile(rel string) bool {
	if rel == project.Normalize(w.config.Scan.IgnoreFile) {
		return true
	}
	if path.Base(rel) == ".gitignore" {
		return w.config.Scan.Gitignore
	}
	return slices.Contains(w.config.Resolve.AliasConfigs, rel)
}

func (w *Watcher) underExcludedDir(rel string) bool {
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if w.scanner.IsExcludedDir(dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return project.Normalize(rel)
}

// processDebounced flushes pending changes until ctx is done.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending delivers the pending batch once no change has arrived for
// the debounce period.
func (w *Watcher) processPending() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	now := time.Now()
	for _, last := range w.pending {
		if now.Sub(last) < w.debounce {
			w.mu.Unlock()
			return
		}
	}

	changed := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		changed = append(changed, rel)
	}
	w.pending = make(map[string]time.Time)
	cb := w.callback
	w.mu.Unlock()

	sort.Strings(changed)
	if cb != nil {
		w.runCallback(cb, changed)
	}
}

func (w *Watcher) runCallback(cb func([]string), changed []string) {
	const shown = 3
	summary := strings.Join(changed[:min(len(changed), shown)], ", ")
	if extra := len(changed) - shown; extra > 0 {
		summary += fmt.Sprintf(" (+%d more)", extra)
	}

	color.New(color.FgYellow).Fprintf(w.out, "\nChanged: %s\n", summary)
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	cb(changed)

	fmt.Fprintln(w.out)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories currently registered.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
