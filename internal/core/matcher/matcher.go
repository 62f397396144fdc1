// Package matcher decides whether two filenames refer to the same artifact.
//
// A decision normalizes both inputs, then short-circuits on equality and on
// containment before falling back to a similarity score that must exceed the
// configured threshold.
package matcher

import (
	"errors"
	"math"
	"strings"

	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// DefaultThreshold is the similarity a pair must exceed to match.
const DefaultThreshold = 0.8

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Config holds configuration for the matcher.
type Config struct {
	Threshold float64
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// Matcher combines a normalizer and a scorer into match decisions.
type Matcher struct {
	config     Config
	logger     ports.Logger
	normalizer ports.Normalizer
	scorer     ports.Scorer
}

// NewMatcher creates a new matcher.
func NewMatcher(config Config, logger ports.Logger, normalizer ports.Normalizer, scorer ports.Scorer) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Matcher{
		config:     config,
		logger:     logger,
		normalizer: normalizer,
		scorer:     scorer,
	}, nil
}

// Threshold returns the configured threshold.
func (m *Matcher) Threshold() float64 {
	return m.config.Threshold
}

// Normalize canonicalizes a filename with the matcher's normalizer.
func (m *Matcher) Normalize(filename string) string {
	return m.normalizer.Normalize(filename)
}

// FuzzyMatch reports whether requested and actual name the same file.
// Unlike Match it skips scoring whenever a shortcut decides.
func (m *Matcher) FuzzyMatch(requested, actual string) bool {
	return m.decide(m.normalizer.Normalize(requested), m.normalizer.Normalize(actual), false).Passed
}

// Match normalizes both filenames and returns the full decision.
func (m *Matcher) Match(requested, actual string) domain.MatchResult {
	m.logger.Debug("Starting filename match",
		"requested", requested,
		"actual", actual,
	)
	return m.MatchCanonical(m.normalizer.Normalize(requested), m.normalizer.Normalize(actual))
}

// MatchCanonical decides on filenames that are already normalized. The result
// always carries the similarity score, including for shortcut decisions.
func (m *Matcher) MatchCanonical(requested, actual string) domain.MatchResult {
	result := m.decide(requested, actual, true)

	m.logger.Debug("Computed filename match",
		"requested", result.Requested,
		"actual", result.Actual,
		"score", result.Score,
		"passed", result.Passed,
		"reason", result.Reason,
	)
	return result
}

func (m *Matcher) decide(requested, actual string, wantScore bool) domain.MatchResult {
	result := domain.MatchResult{
		Requested: requested,
		Actual:    actual,
		Threshold: m.config.Threshold,
	}

	if requested == actual {
		result.Score = 1.0
		result.Passed = true
		result.Reason = domain.ReasonExact
		return result
	}

	// An empty canonical form is contained in everything; it must fall through
	// to scoring, where it scores 0.
	if requested != "" && actual != "" &&
		(strings.Contains(requested, actual) || strings.Contains(actual, requested)) {
		result.Passed = true
		result.Reason = domain.ReasonContainment
		if wantScore {
			result.Score = m.scorer.Score(requested, actual)
		}
		return result
	}

	result.Score = m.scorer.Score(requested, actual)
	if result.Score > m.config.Threshold {
		result.Passed = true
		result.Reason = domain.ReasonSimilarity
	} else {
		result.Reason = domain.ReasonBelowThreshold
	}
	return result
}
