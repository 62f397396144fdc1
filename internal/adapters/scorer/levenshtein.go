package scorer

import (
	"github.com/baditaflorin/go_filename_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// LevenshteinScorer scores canonical filenames by normalized Levenshtein distance.
type LevenshteinScorer struct{}

// NewLevenshteinScorer creates the default scorer.
func NewLevenshteinScorer() ports.Scorer {
	return LevenshteinScorer{}
}

// Score returns levenshtein.Similarity(a, b).
func (LevenshteinScorer) Score(a, b string) float64 {
	return levenshtein.Similarity(a, b)
}
