package ports

import "github.com/baditaflorin/go_filename_similarity/internal/core/domain"

// Matcher defines the interface batch components use to compare filenames.
// Callers normalize a query once and reuse its canonical form across candidates.
type Matcher interface {
	Normalize(filename string) string
	MatchCanonical(requested, actual string) domain.MatchResult
}
