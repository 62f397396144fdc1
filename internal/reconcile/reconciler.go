// Package reconcile pairs requested downloads with the files that appear in
// download directories, using fuzzy filename matching.
package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrEmptyID is returned when a request has no identifier.
	ErrEmptyID = errors.New("request id is empty")
	// ErrEmptyRequest is returned when a requested filename normalizes to nothing.
	ErrEmptyRequest = errors.New("requested filename is empty after normalization")
	// ErrAlreadyStarted is returned by Start on a running reconciler.
	ErrAlreadyStarted = errors.New("reconciler already started")
)

// DefaultIgnoreSuffixes lists the extensions of files that are still downloading.
func DefaultIgnoreSuffixes() []string {
	return []string{".part", ".tmp", ".download", ".crdownload"}
}

// Resolution reports a pending request that was matched to a file.
type Resolution struct {
	ID        string
	Requested string
	Path      string
	Result    domain.MatchResult
	At        time.Time
}

// Handler receives resolutions. It is called from the goroutine that observed
// the file and must not block for long.
type Handler func(Resolution)

type request struct {
	id        string
	requested string
	canonical string
	expected  time.Time
}

// Reconciler tracks pending requests and resolves them against observed files.
type Reconciler struct {
	matcher        ports.Matcher
	handler        Handler
	logger         ports.Logger
	clock          clockwork.Clock
	namer          *normalizer.SafeNamer
	ignoreSuffixes []string

	mu      sync.Mutex
	pending []request

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(lg ports.Logger) Option {
	return func(r *Reconciler) {
		r.logger = lg
	}
}

// WithClock sets the clock used for timestamps and generated names.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Reconciler) {
		r.clock = clock
	}
}

// WithIgnoreSuffixes replaces the suffixes of files that are never matched.
func WithIgnoreSuffixes(suffixes []string) Option {
	return func(r *Reconciler) {
		r.ignoreSuffixes = suffixes
	}
}

// New creates a Reconciler. handler may be nil when callers only use Observe's
// return value.
func New(matcher ports.Matcher, handler Handler, opts ...Option) *Reconciler {
	r := &Reconciler{
		matcher:        matcher,
		handler:        handler,
		logger:         logger.NewNopLogger(),
		clock:          clockwork.NewRealClock(),
		ignoreSuffixes: DefaultIgnoreSuffixes(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.namer = normalizer.NewSafeNamer(r.clock)
	return r
}

// Expect registers a requested filename under id, replacing any earlier request
// with the same id.
func (r *Reconciler) Expect(id, requested string) error {
	if id == "" {
		return ErrEmptyID
	}
	canonical := r.matcher.Normalize(requested)
	if canonical == "" {
		return ErrEmptyRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(id)
	r.pending = append(r.pending, request{
		id:        id,
		requested: requested,
		canonical: canonical,
		expected:  r.clock.Now(),
	})
	r.logger.Debug("Expecting download", "id", id, "requested", requested)
	return nil
}

// ExpectDescription registers the filename a downloader derives from a
// free-text description and returns that filename.
func (r *Reconciler) ExpectDescription(id, description string) (string, error) {
	filename := r.namer.Convert(description)
	return filename, r.Expect(id, filename)
}

// Cancel drops a pending request and reports whether it existed.
func (r *Reconciler) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

// Pending returns the ids of unresolved requests in the order they were expected.
func (r *Reconciler) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, len(r.pending))
	for i, req := range r.pending {
		ids[i] = req.id
	}
	return ids
}

func (r *Reconciler) removeLocked(id string) bool {
	for i, req := range r.pending {
		if req.id == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Observe matches the base name of path against the pending requests. The best
// scoring match wins, the earliest request on ties. The resolved request is
// removed and passed to the handler.
func (r *Reconciler) Observe(path string) (Resolution, bool) {
	base := filepath.Base(path)
	if r.shouldIgnore(base) {
		r.logger.Debug("Ignoring partial download", "path", path)
		return Resolution{}, false
	}
	canonical := r.matcher.Normalize(base)

	r.mu.Lock()
	best := -1
	var bestResult domain.MatchResult
	for i, req := range r.pending {
		result := r.matcher.MatchCanonical(req.canonical, canonical)
		if result.Passed && (best < 0 || result.Score > bestResult.Score) {
			best = i
			bestResult = result
		}
	}
	if best < 0 {
		r.mu.Unlock()
		r.logger.Debug("No pending request matches file", "path", path)
		return Resolution{}, false
	}
	req := r.pending[best]
	r.pending = append(r.pending[:best], r.pending[best+1:]...)
	r.mu.Unlock()

	res := Resolution{
		ID:        req.id,
		Requested: req.requested,
		Path:      path,
		Result:    bestResult,
		At:        r.clock.Now(),
	}
	r.logger.Info("Download reconciled",
		"id", res.ID,
		"requested", res.Requested,
		"path", res.Path,
		"score", bestResult.Score,
		"reason", bestResult.Reason,
		"waited", res.At.Sub(req.expected),
	)
	if r.handler != nil {
		r.handler(res)
	}
	return res, true
}

func (r *Reconciler) shouldIgnore(base string) bool {
	lower := strings.ToLower(base)
	for _, suffix := range r.ignoreSuffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// Start watches dirs and observes every file created in them until Stop is called.
func (r *Reconciler) Start(dirs []string) error {
	if r.fsWatcher != nil {
		return ErrAlreadyStarted
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.Close()
			return err
		}
		if err := w.Add(absDir); err != nil {
			w.Close()
			return err
		}
	}

	r.fsWatcher = w
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.processEvents()

	r.logger.Info("Watching download directories", "dirs", dirs)
	return nil
}

// Stop ends the watch started by Start. It is a no-op when not started.
func (r *Reconciler) Stop() {
	if r.fsWatcher == nil {
		return
	}
	close(r.done)
	r.wg.Wait()
	r.fsWatcher.Close()
	r.fsWatcher = nil
}

func (r *Reconciler) processEvents() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.fsWatcher.Events:
			if !ok {
				return
			}
			// Renames from a partial name arrive as a Create of the final name.
			if !event.Has(fsnotify.Create) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			r.Observe(event.Name)
		case err, ok := <-r.fsWatcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("Watcher error", "error", err)
		}
	}
}
