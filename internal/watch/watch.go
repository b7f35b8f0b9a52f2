// Package watch rebuilds the documentation when its sources change and,
// optionally, on a fixed interval.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
)

// Rebuild reasons passed to BuildFunc.
const (
	ReasonStartup  = "startup"
	ReasonChange   = "change"
	ReasonSchedule = "schedule"
)

// DefaultDebounce is the quiet window used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build.
type BuildFunc func(ctx context.Context, reason string) error

// Options configures a Watcher.
type Options struct {
	// Paths are watched recursively. Plain files are watched through their
	// parent directory.
	Paths []string
	// Ignore lists directories whose events never trigger a build (the
	// output directory, usually).
	Ignore          []string
	Debounce        time.Duration
	RebuildInterval time.Duration
	Logger          *slog.Logger
}

// Watcher runs builds in response to file changes. At most one build runs
// at a time; requests arriving during a build collapse into one follow-up.
type Watcher struct {
	build BuildFunc
	opts  Options
	log   *slog.Logger

	requests chan string
	mu       sync.Mutex
	running  bool
	pending  string
}

// New returns a Watcher.
func New(build BuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{build: build, opts: opts, log: opts.Logger, requests: make(chan string, 1)}
}

// Run builds once, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	for _, p := range w.opts.Paths {
		if err := w.add(fw, p); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()

	if w.opts.RebuildInterval > 0 {
		s, err := w.schedule()
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Shutdown(); err != nil {
				w.log.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	w.enqueue(ReasonStartup)
	trigger, stop := newDebouncer(w.opts.Debounce, func() { w.enqueue(ReasonChange) })
	defer stop()

	w.log.Info("Watching for changes",
		slog.Any("paths", w.opts.Paths),
		logfields.Duration(w.opts.Debounce))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopping watcher")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) add(fw *fsnotify.Watcher, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return ferrors.FileSystemError("watch path").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if !fi.IsDir() {
		if err := fw.Add(filepath.Dir(path)); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch directory").
				WithContext("path", path).
				Build()
		}
		return nil
	}
	return w.addDirsRecursive(fw, path)
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.log.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.InternalError("create scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.RebuildInterval),
		gocron.NewTask(w.enqueue, ReasonSchedule),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.InternalError("schedule periodic rebuild").WithCause(err).Build()
	}
	s.Start()
	w.log.Info("Periodic rebuild scheduled", logfields.Duration(w.opts.RebuildInterval))
	return s, nil
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || w.ignored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	w.log.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	trigger()
}

// ignored reports whether path lies inside one of the ignored directories.
func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.opts.Ignore {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// enqueue requests a build. While a build runs, only the latest reason is kept.
func (w *Watcher) enqueue(reason string) {
	w.mu.Lock()
	if w.running {
		w.pending = reason
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	select {
	case w.requests <- reason:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.requests:
			w.mu.Lock()
			w.running = true
			w.mu.Unlock()

			w.runBuild(ctx, reason)

			w.mu.Lock()
			w.running = false
			next := w.pending
			w.pending = ""
			w.mu.Unlock()
			if next != "" {
				w.enqueue(next)
			}
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, reason string) {
	start := time.Now()
	w.log.Info("Rebuilding", slog.String("reason", reason))
	if err := w.build(ctx, reason); err != nil {
		w.log.Warn("Rebuild failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return
	}
	w.log.Info("Rebuild finished", logfields.Duration(time.Since(start)))
}

// newDebouncer returns a trigger that calls fn once no trigger has happened
// for d, and a stop function cancelling any pending call.
func newDebouncer(d time.Duration, fn func()) (trigger func(), stop func()) {
	var mu sync.Mutex
	var timer *time.Timer
	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, fn)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

// shouldIgnoreEvent returns true for editor and OS artifacts.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || base == "4913"
}
