package scorer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/hbollon/go-edlib"
)

// Algorithm names a similarity algorithm a Scorer can be built from.
type Algorithm string

const (
	Levenshtein         Algorithm = "levenshtein"
	DamerauLevenshtein  Algorithm = "damerau-levenshtein"
	OSADamerau          Algorithm = "osa"
	LongestCommonSubseq Algorithm = "lcs"
	Jaro                Algorithm = "jaro"
	JaroWinkler         Algorithm = "jaro-winkler"
	Cosine              Algorithm = "cosine"
	Jaccard             Algorithm = "jaccard"
	SorensenDice        Algorithm = "sorensen-dice"
	Qgram               Algorithm = "qgram"
)

// ErrUnknownAlgorithm is returned when an algorithm name is not supported.
var ErrUnknownAlgorithm = errors.New("unknown similarity algorithm")

// Hamming is left out: it is undefined for filenames of different lengths.
var edlibAlgorithms = map[Algorithm]edlib.Algorithm{
	DamerauLevenshtein:  edlib.DamerauLevenshtein,
	OSADamerau:          edlib.OSADamerauLevenshtein,
	LongestCommonSubseq: edlib.Lcs,
	Jaro:                edlib.Jaro,
	JaroWinkler:         edlib.JaroWinkler,
	Cosine:              edlib.Cosine,
	Jaccard:             edlib.Jaccard,
	SorensenDice:        edlib.SorensenDice,
	Qgram:               edlib.Qgram,
}

// Algorithms returns every supported algorithm name, sorted.
func Algorithms() []Algorithm {
	names := make([]Algorithm, 0, len(edlibAlgorithms)+1)
	names = append(names, Levenshtein)
	for name := range edlibAlgorithms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// New returns a Scorer for the named algorithm. Levenshtein uses the native
// implementation; everything else is delegated to go-edlib.
func New(algorithm Algorithm) (ports.Scorer, error) {
	if algorithm == "" || algorithm == Levenshtein {
		return NewLevenshteinScorer(), nil
	}
	algo, ok := edlibAlgorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	return &EdlibScorer{name: algorithm, algorithm: algo}, nil
}

// EdlibScorer scores with one of the go-edlib string similarity algorithms.
// The equality and empty-input rules match the native scorer.
type EdlibScorer struct {
	name      Algorithm
	algorithm edlib.Algorithm
}

// Name returns the algorithm the scorer was built with.
func (s *EdlibScorer) Name() Algorithm {
	return s.name
}

// Score returns the go-edlib similarity clamped to [0, 1].
func (s *EdlibScorer) Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	sim, err := edlib.StringsSimilarity(a, b, s.algorithm)
	if err != nil {
		return 0.0
	}
	score := float64(sim)
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}
