package matcher

import (
	"math"
	"strings"
	"testing"

	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/scorer"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestMatcher(t testing.TB, threshold float64) *Matcher {
	t.Helper()
	m, err := NewMatcher(Config{Threshold: threshold}, logger.NewNopLogger(),
		normalizer.NewFilenameNormalizer(), scorer.NewLevenshteinScorer())
	require.NoError(t, err)
	return m
}

func TestConfigValidate(t *testing.T) {
	for _, th := range []float64{0, 0.5, DefaultThreshold, 1} {
		assert.NoError(t, Config{Threshold: th}.Validate(), th)
	}
	for _, th := range []float64{-0.1, 1.01, math.NaN()} {
		assert.ErrorIs(t, Config{Threshold: th}.Validate(), ErrInvalidThreshold, th)
	}

	_, err := NewMatcher(Config{Threshold: 2}, logger.NewNopLogger(),
		normalizer.NewFilenameNormalizer(), scorer.NewLevenshteinScorer())
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestMatch(t *testing.T) {
	m := newTestMatcher(t, DefaultThreshold)

	// 81 shared runes and 19 substitutions: similarity 0.81.
	closeA := strings.Repeat("a", 100)
	closeB := strings.Repeat("a", 81) + strings.Repeat("b", 19)

	tests := []struct {
		name      string
		requested string
		actual    string
		passed    bool
		reason    domain.Reason
	}{
		{name: "case-insensitive exact", requested: "Movie.mp4", actual: "movie.mp4", passed: true, reason: domain.ReasonExact},
		{name: "brackets and commas", requested: "【Tutorial】,Part1", actual: "tutorial part1", passed: true, reason: domain.ReasonExact},
		{name: "containment", requested: "video", actual: "my video file", passed: true, reason: domain.ReasonContainment},
		{name: "containment reversed", requested: "my video file", actual: "VIDEO", passed: true, reason: domain.ReasonContainment},
		{name: "both empty", requested: "", actual: "", passed: true, reason: domain.ReasonExact},
		{name: "whitespace only vs empty", requested: "  \t", actual: "", passed: true, reason: domain.ReasonExact},
		{name: "empty vs present", requested: "", actual: "movie.mp4", passed: false, reason: domain.ReasonBelowThreshold},
		{name: "present vs separators only", requested: "movie.mp4", actual: "【】", passed: false, reason: domain.ReasonBelowThreshold},
		{name: "similarity exactly at threshold", requested: "abcde", actual: "abcdx", passed: false, reason: domain.ReasonBelowThreshold},
		{name: "similarity above threshold", requested: closeA, actual: closeB, passed: true, reason: domain.ReasonSimilarity},
		{name: "dissimilar", requested: "kitten", actual: "sitting", passed: false, reason: domain.ReasonBelowThreshold},
		{name: "episode typo", requested: "holiday video part one.mp4", actual: "holiday vidoe part one.mp4", passed: true, reason: domain.ReasonSimilarity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := m.Match(tc.requested, tc.actual)
			assert.Equal(t, tc.passed, result.Passed)
			assert.Equal(t, tc.reason, result.Reason)
			assert.Equal(t, DefaultThreshold, result.Threshold)
			assert.Equal(t, tc.passed, m.FuzzyMatch(tc.requested, tc.actual))
		})
	}
}

func TestMatchScores(t *testing.T) {
	m := newTestMatcher(t, DefaultThreshold)

	exact := m.Match("Movie.mp4", "movie.mp4")
	assert.Equal(t, 1.0, exact.Score)

	contained := m.Match("video", "my video file")
	assert.InDelta(t, 1-8.0/13.0, contained.Score, 1e-12)

	below := m.Match("kitten", "sitting")
	assert.InDelta(t, 1-3.0/7.0, below.Score, 1e-12)
	assert.Equal(t, "kitten", below.Requested)
	assert.Equal(t, "sitting", below.Actual)
}

func TestCustomThresholdKeepsStrictInequality(t *testing.T) {
	m := newTestMatcher(t, 0.5)
	assert.True(t, m.FuzzyMatch("kitten", "sitting"))
	assert.False(t, m.FuzzyMatch("ab", "ax"))

	strict := newTestMatcher(t, 1)
	assert.False(t, strict.FuzzyMatch("abcde", "abcdx"))
	assert.True(t, strict.FuzzyMatch("ABCDE", "abcde"))
}

func TestMatchWithAlternativeScorer(t *testing.T) {
	jw, err := scorer.New(scorer.JaroWinkler)
	require.NoError(t, err)
	m, err := NewMatcher(DefaultConfig(), logger.NewNopLogger(), normalizer.NewFilenameNormalizer(), jw)
	require.NoError(t, err)

	result := m.Match("holiday video part1", "holiday video part2")
	assert.True(t, result.Passed)
	assert.Equal(t, domain.ReasonSimilarity, result.Reason)
}

func TestMatchLogsDecision(t *testing.T) {
	rec := &testutil.RecordingLogger{}
	m, err := NewMatcher(DefaultConfig(), rec, normalizer.NewFilenameNormalizer(), scorer.NewLevenshteinScorer())
	require.NoError(t, err)

	m.Match("a", "b")
	assert.Equal(t, []string{
		"debug: Starting filename match",
		"debug: Computed filename match",
	}, rec.Messages())
}

func TestMatchProperties(t *testing.T) {
	m := newTestMatcher(t, DefaultThreshold)

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.StringMatching(`[A-Ca-c 【】,，.]{0,16}`).Draw(t, "a")
		b := rapid.StringMatching(`[A-Ca-c 【】,，.]{0,16}`).Draw(t, "b")

		ab := m.Match(a, b)
		ba := m.Match(b, a)
		if ab.Passed != ba.Passed || ab.Score != ba.Score {
			t.Fatalf("match not symmetric for %q, %q", a, b)
		}
		if ab.Passed != m.FuzzyMatch(a, b) {
			t.Fatalf("Match and FuzzyMatch disagree for %q, %q", a, b)
		}
		if !m.FuzzyMatch(a, a) {
			t.Fatalf("%q does not match itself", a)
		}
	})
}
