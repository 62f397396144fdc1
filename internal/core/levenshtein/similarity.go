// Package levenshtein computes the edit distance between two strings and the
// normalized similarity derived from it. Lengths and edits are counted in runes.
package levenshtein

import (
	"unicode/utf8"

	"github.com/baditaflorin/go_filename_similarity/internal/pool"
)

// Filenames rarely exceed a few hundred runes; larger inputs grow the pooled buffers.
const defaultBufferSize = 256

var (
	rowPool  = pool.NewRowPool(defaultBufferSize)
	runePool = pool.NewRuneBufferPool(defaultBufferSize)
)

// Distance returns the minimum number of single-rune insertions, deletions and
// substitutions needed to turn a into b.
func Distance(a, b string) int {
	ra := runePool.Get()
	rb := runePool.Get()
	defer runePool.Put(ra)
	defer runePool.Put(rb)

	for _, r := range a {
		*ra = append(*ra, r)
	}
	for _, r := range b {
		*rb = append(*rb, r)
	}
	return distance(*ra, *rb)
}

// distance runs the classic dynamic-programming recurrence keeping only two rows
// of the (len(a)+1) x (len(b)+1) table.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	// The distance is symmetric, so size the rows by the shorter input.
	if len(b) > len(a) {
		a, b = b, a
	}

	prevRow := rowPool.Get(len(b) + 1)
	currRow := rowPool.Get(len(b) + 1)
	defer rowPool.Put(prevRow)
	defer rowPool.Put(currRow)

	prev, curr := *prevRow, *currRow
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution or match
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Similarity returns 1 - Distance(a, b) / max(len(a), len(b)).
// Identical strings (including two empty strings) score 1; a single empty input scores 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1.0 - float64(Distance(a, b))/float64(longest)
}

// WarmPool pre-populates the row and rune pools with n buffers sized for
// strings of up to size runes.
func WarmPool(n, size int) {
	rows := make([]*[]int, 0, n)
	runes := make([]*[]rune, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, rowPool.Get(size+1))
		buf := runePool.Get()
		if cap(*buf) < size {
			*buf = make([]rune, 0, size)
		}
		runes = append(runes, buf)
	}
	for i := range rows {
		rowPool.Put(rows[i])
		runePool.Put(runes[i])
	}
}
