// Package search ranks candidate filenames against a query in parallel.
package search

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/baditaflorin/l"
	"golang.org/x/sync/errgroup"
)

// MinCandidatesPerWorker keeps small searches from being split into tiny batches.
const MinCandidatesPerWorker = 32

// ErrEmptyQuery is returned when the query normalizes to an empty string.
var ErrEmptyQuery = errors.New("query is empty after normalization")

// Searcher ranks candidates against a query.
type Searcher struct {
	matcher ports.Matcher
	logger  ports.Logger
	workers int
	limit   int
}

// Option defines a functional option for configuring a Searcher.
type Option func(*searchConfig)

type searchConfig struct {
	Matcher   ports.Matcher
	Threshold float64
	Workers   int
	Limit     int
	Logger    ports.Logger
}

// WithMatcher sets the matcher used to compare candidates. It takes precedence
// over WithThreshold.
func WithMatcher(m ports.Matcher) Option {
	return func(cfg *searchConfig) {
		cfg.Matcher = m
	}
}

// WithThreshold sets the threshold of the default matcher.
func WithThreshold(th float64) Option {
	return func(cfg *searchConfig) {
		cfg.Threshold = th
	}
}

// WithWorkers sets the maximum number of goroutines scoring candidates.
func WithWorkers(n int) Option {
	return func(cfg *searchConfig) {
		cfg.Workers = n
	}
}

// WithLimit caps the number of hits returned; 0 returns every hit.
func WithLimit(n int) Option {
	return func(cfg *searchConfig) {
		cfg.Limit = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *searchConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// New creates a Searcher.
func New(opts ...Option) (*Searcher, error) {
	cfg := &searchConfig{
		Threshold: filenamesimilarity.DefaultThreshold,
		Workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Limit < 0 {
		cfg.Limit = 0
	}
	if cfg.Matcher == nil {
		fm, err := filenamesimilarity.New(
			filenamesimilarity.WithQuietLogger(),
			filenamesimilarity.WithThreshold(cfg.Threshold),
		)
		if err != nil {
			return nil, err
		}
		cfg.Matcher = fm
	}

	return &Searcher{
		matcher: cfg.Matcher,
		logger:  cfg.Logger,
		workers: cfg.Workers,
		limit:   cfg.Limit,
	}, nil
}

// Search matches every candidate against query and returns the matching ones,
// best score first. Candidates with equal scores keep their input order.
func (s *Searcher) Search(ctx context.Context, query string, candidates []string) ([]domain.Hit, error) {
	start := time.Now()

	canonicalQuery := s.matcher.Normalize(query)
	if canonicalQuery == "" {
		return nil, ErrEmptyQuery
	}

	results := make([]domain.MatchResult, len(candidates))
	batchSize := max(MinCandidatesPerWorker, (len(candidates)+s.workers-1)/s.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for lo := 0; lo < len(candidates); lo += batchSize {
		hi := min(lo+batchSize, len(candidates))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				results[i] = s.matcher.MatchCanonical(canonicalQuery, s.matcher.Normalize(candidates[i]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Search aborted", "query", query, "error", err)
		return nil, err
	}

	hits := make([]domain.Hit, 0)
	for i, r := range results {
		if r.Passed {
			hits = append(hits, domain.Hit{Candidate: candidates[i], Index: i, Result: r})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Result.Score > hits[j].Result.Score
	})
	if s.limit > 0 && len(hits) > s.limit {
		hits = hits[:s.limit]
	}

	s.logger.Debug("Search completed",
		"query", query,
		"candidates", len(candidates),
		"hits", len(hits),
		"duration", time.Since(start),
	)
	return hits, nil
}
