package normalizer

import (
	"strings"
	"unicode"

	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// FilenameNormalizer produces the canonical form used for filename comparison.
type FilenameNormalizer struct{}

// NewFilenameNormalizer creates the canonical filename normalizer.
func NewFilenameNormalizer() ports.Normalizer {
	return FilenameNormalizer{}
}

// isSeparator reports whether r is one of the bracket or comma characters that
// separate words in downloaded filenames.
func isSeparator(r rune) bool {
	switch r {
	case '【', '】', ',', '，':
		return true
	}
	return false
}

// isSpace treats the byte order mark as whitespace in addition to the Unicode White_Space set.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Normalize replaces separators with spaces, collapses whitespace runs to a
// single space, trims both ends and lower-cases the result in one pass.
func (FilenameNormalizer) Normalize(filename string) string {
	if filename == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(filename))

	pendingSpace := false
	for _, r := range filename {
		if isSeparator(r) || isSpace(r) {
			// Leading spaces are dropped; interior runs become one space once a word follows.
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
