// filename_similarity.go
// Package filenamesimilarity decides whether two filenames refer to the same file.
// Both names are canonicalized (bracket and comma characters become spaces,
// whitespace runs collapse, the result is trimmed and lower-cased). Equal or
// mutually containing canonical forms match outright; otherwise the pair matches
// when its normalized Levenshtein similarity
//
//	similarity = 1 - distance(a, b) / max(len(a), len(b))
//
// is strictly greater than the threshold (0.8 by default).
//
// The free functions Normalize, Similarity and FuzzyMatch use the defaults and
// never log. New builds a configurable FilenameMatcher using functional options.
package filenamesimilarity

import (
	"context"

	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/scorer"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_filename_similarity/internal/core/matcher"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/baditaflorin/go_filename_similarity/internal/warmup"
	"github.com/baditaflorin/l"
)

// DefaultThreshold is the similarity a pair must exceed to match.
const DefaultThreshold = matcher.DefaultThreshold

type (
	// MatchResult holds the outcome of a filename match.
	MatchResult = domain.MatchResult
	// Reason records which step produced a match decision.
	Reason = domain.Reason
	// Hit is a candidate that matched a query.
	Hit = domain.Hit
	// Algorithm names a similarity algorithm.
	Algorithm = scorer.Algorithm
)

const (
	ReasonExact          = domain.ReasonExact
	ReasonContainment    = domain.ReasonContainment
	ReasonSimilarity     = domain.ReasonSimilarity
	ReasonBelowThreshold = domain.ReasonBelowThreshold
)

var (
	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = matcher.ErrInvalidThreshold
	// ErrUnknownAlgorithm is returned for unsupported algorithm names.
	ErrUnknownAlgorithm = scorer.ErrUnknownAlgorithm
)

var (
	defaultNormalizer = normalizer.NewFilenameNormalizer()
	defaultMatcher    = mustDefaultMatcher()
	defaultSafeNamer  = normalizer.NewSafeNamer(nil)
)

func mustDefaultMatcher() *matcher.Matcher {
	m, err := matcher.NewMatcher(matcher.DefaultConfig(), logger.NewNopLogger(),
		defaultNormalizer, scorer.NewLevenshteinScorer())
	if err != nil {
		panic(err)
	}
	return m
}

// Normalize returns the canonical form of filename.
func Normalize(filename string) string {
	return defaultNormalizer.Normalize(filename)
}

// NormalizePtr is Normalize for optional input; nil normalizes to "".
func NormalizePtr(filename *string) string {
	if filename == nil {
		return ""
	}
	return Normalize(*filename)
}

// Similarity returns the normalized Levenshtein similarity of a and b in [0, 1].
// The inputs are compared as given, without normalization.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b)
}

// FuzzyMatch reports whether requested and actual refer to the same file using
// the default threshold.
func FuzzyMatch(requested, actual string) bool {
	return defaultMatcher.FuzzyMatch(requested, actual)
}

// SafeFilename converts a free-text description into a filename safe to write.
func SafeFilename(description string) string {
	return defaultSafeNamer.Convert(description)
}

// Algorithms lists the names accepted by WithAlgorithm.
func Algorithms() []Algorithm {
	return scorer.Algorithms()
}

// Option defines a functional option for configuring a FilenameMatcher.
type Option func(*config)

type config struct {
	Threshold    float64
	Algorithm    Algorithm
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	WidthFolding bool
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithThreshold sets a custom threshold. A pair matches on similarity only when
// its score is strictly greater than the threshold.
func WithThreshold(th float64) Option {
	return func(cfg *config) {
		cfg.Threshold = th
	}
}

// WithAlgorithm selects the similarity algorithm used after the shortcuts fail.
func WithAlgorithm(algorithm Algorithm) Option {
	return func(cfg *config) {
		cfg.Algorithm = algorithm
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithQuietLogger disables logging.
func WithQuietLogger() Option {
	return func(cfg *config) {
		cfg.Logger = logger.NewNopLogger()
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *config) {
		cfg.Normalizer = n
	}
}

// WithWidthFolding folds full-width characters to their narrow forms before
// canonicalizing, so "ＭＯＶＩＥ" matches "movie".
func WithWidthFolding() Option {
	return func(cfg *config) {
		cfg.WidthFolding = true
	}
}

// WithWarmUp enables warmup of the buffer pools and the matcher on creation.
func WithWarmUp(enabled bool) Option {
	return func(cfg *config) {
		cfg.WarmUp = enabled
	}
}

// WithWarmUpConfig sets the warmup configuration.
func WithWarmUpConfig(wc warmup.WarmupConfig) Option {
	return func(cfg *config) {
		cfg.WarmUpConfig = wc
	}
}

// FilenameMatcher matches filenames with a configurable threshold, algorithm and normalizer.
type FilenameMatcher struct {
	matcher    *matcher.Matcher
	scorer     ports.Scorer
	logger     ports.Logger
	normalizer ports.Normalizer
}

// New creates a FilenameMatcher. Without WithLogger a default l logger writing
// to stdout is created.
func New(opts ...Option) (*FilenameMatcher, error) {
	cfg := &config{
		Threshold:    DefaultThreshold,
		Algorithm:    scorer.Levenshtein,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		var err error
		cfg.Logger, err = createDefaultLogger()
		if err != nil {
			return nil, err
		}
	}

	if cfg.Normalizer == nil {
		cfg.Normalizer = normalizer.NewFilenameNormalizer()
	}
	if cfg.WidthFolding {
		cfg.Normalizer = normalizer.NewWidthFoldingNormalizer(cfg.Normalizer)
	}

	sc, err := scorer.New(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	m, err := matcher.NewMatcher(matcher.Config{Threshold: cfg.Threshold}, cfg.Logger, cfg.Normalizer, sc)
	if err != nil {
		return nil, err
	}

	fm := &FilenameMatcher{
		matcher:    m,
		scorer:     sc,
		logger:     cfg.Logger,
		normalizer: cfg.Normalizer,
	}

	if cfg.WarmUp {
		wm := warmup.NewManager(cfg.Logger, cfg.WarmUpConfig)
		wm.RegisterNormalizer(cfg.Normalizer)
		wm.RegisterMatcher(m)
		wm.WarmUp(context.Background())
	}

	return fm, nil
}

// Match normalizes both filenames and returns the full decision.
func (fm *FilenameMatcher) Match(requested, actual string) MatchResult {
	return fm.matcher.Match(requested, actual)
}

// MatchCanonical decides on filenames that are already in canonical form.
func (fm *FilenameMatcher) MatchCanonical(requested, actual string) MatchResult {
	return fm.matcher.MatchCanonical(requested, actual)
}

// FuzzyMatch reports whether requested and actual refer to the same file.
func (fm *FilenameMatcher) FuzzyMatch(requested, actual string) bool {
	return fm.matcher.FuzzyMatch(requested, actual)
}

// Normalize returns the canonical form of filename under this matcher's normalizer.
func (fm *FilenameMatcher) Normalize(filename string) string {
	return fm.normalizer.Normalize(filename)
}

// Similarity scores two strings with the configured algorithm, without normalization.
func (fm *FilenameMatcher) Similarity(a, b string) float64 {
	return fm.scorer.Score(a, b)
}

// Threshold returns the configured threshold.
func (fm *FilenameMatcher) Threshold() float64 {
	return fm.matcher.Threshold()
}

// Logger returns the matcher's logger.
func (fm *FilenameMatcher) Logger() ports.Logger {
	return fm.logger
}

// Close releases the logger.
func (fm *FilenameMatcher) Close() error {
	return fm.logger.Close()
}
