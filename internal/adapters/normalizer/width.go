package normalizer

import (
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"golang.org/x/text/width"
)

// WidthFoldingNormalizer folds full-width forms such as "ＡＢＣ１２３" to their
// narrow equivalents before delegating to another normalizer.
type WidthFoldingNormalizer struct {
	inner ports.Normalizer
}

// NewWidthFoldingNormalizer wraps inner, or the canonical normalizer when inner is nil.
func NewWidthFoldingNormalizer(inner ports.Normalizer) ports.Normalizer {
	if inner == nil {
		inner = NewFilenameNormalizer()
	}
	return &WidthFoldingNormalizer{inner: inner}
}

// Normalize narrows the input and normalizes the result.
func (n *WidthFoldingNormalizer) Normalize(filename string) string {
	if filename == "" {
		return ""
	}
	return n.inner.Normalize(width.Narrow.String(filename))
}
