// Package streaming matches a query against candidate filenames read line by line.
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/baditaflorin/go_filename_similarity/pkg/search"
	"github.com/baditaflorin/l"
)

// Default configuration values.
const (
	DefaultInitialBufferSize = 4 * 1024
	DefaultMaxLineSize       = 64 * 1024
)

// StreamMatcher reads one candidate filename per line and reports the ones
// that match a query.
type StreamMatcher struct {
	matcher     ports.Matcher
	logger      ports.Logger
	maxLineSize int
}

// StreamingOption defines a functional option for configuring a StreamMatcher.
type StreamingOption func(*streamingConfig)

type streamingConfig struct {
	Matcher     ports.Matcher
	Threshold   float64
	MaxLineSize int
	Logger      ports.Logger
}

// WithStreamingMatcher sets the matcher. It takes precedence over WithStreamingThreshold.
func WithStreamingMatcher(m ports.Matcher) StreamingOption {
	return func(cfg *streamingConfig) {
		cfg.Matcher = m
	}
}

// WithStreamingThreshold sets the threshold of the default matcher.
func WithStreamingThreshold(th float64) StreamingOption {
	return func(cfg *streamingConfig) {
		cfg.Threshold = th
	}
}

// WithMaxLineSize sets the longest line accepted, in bytes.
func WithMaxLineSize(n int) StreamingOption {
	return func(cfg *streamingConfig) {
		cfg.MaxLineSize = n
	}
}

// WithStreamingLogger sets a custom logger.
func WithStreamingLogger(lg l.Logger) StreamingOption {
	return func(cfg *streamingConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// NewStreamMatcher creates a StreamMatcher.
func NewStreamMatcher(opts ...StreamingOption) (*StreamMatcher, error) {
	cfg := &streamingConfig{
		Threshold:   filenamesimilarity.DefaultThreshold,
		MaxLineSize: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = DefaultMaxLineSize
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

	return &StreamMatcher{
		matcher:     cfg.Matcher,
		logger:      cfg.Logger,
		maxLineSize: cfg.MaxLineSize,
	}, nil
}

// MatchReader collects every matching line of r, in input order.
func (sm *StreamMatcher) MatchReader(ctx context.Context, query string, r io.Reader) ([]domain.Hit, error) {
	hits := make([]domain.Hit, 0)
	err := sm.MatchReaderFunc(ctx, query, r, func(h domain.Hit) error {
		hits = append(hits, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// MatchReaderFunc calls fn for every matching line of r as soon as it is read.
// Blank lines are skipped and a trailing carriage return is dropped. Hit.Index
// counts candidates (non-blank lines) from 0; Hit.Line is the 1-based line number.
// An error from fn stops the scan and is returned.
func (sm *StreamMatcher) MatchReaderFunc(ctx context.Context, query string, r io.Reader, fn func(domain.Hit) error) error {
	start := time.Now()

	canonicalQuery := sm.matcher.Normalize(query)
	if canonicalQuery == "" {
		return search.ErrEmptyQuery
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(DefaultInitialBufferSize, sm.maxLineSize)), sm.maxLineSize)

	var line, candidates, matched int
	var bytesProcessed int64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line++
		raw := scanner.Text()
		bytesProcessed += int64(len(raw)) + 1

		candidate := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		result := sm.matcher.MatchCanonical(canonicalQuery, sm.matcher.Normalize(candidate))
		if result.Passed {
			matched++
			if err := fn(domain.Hit{Candidate: candidate, Index: candidates, Line: line, Result: result}); err != nil {
				return err
			}
		}
		candidates++
	}
	if err := scanner.Err(); err != nil {
		sm.logger.Error("Error reading candidates", "line", line+1, "error", err)
		return fmt.Errorf("reading candidate at line %d: %w", line+1, err)
	}

	sm.logger.Debug("Stream matching completed",
		"query", query,
		"lines", line,
		"candidates", candidates,
		"matched", matched,
		"bytes_processed", bytesProcessed,
		"duration", time.Since(start),
	)
	return nil
}
