package ports

// Scorer defines the interface for similarity scoring between two canonical filenames.
// Implementations return a value in [0, 1] and must be safe for concurrent use.
type Scorer interface {
	Score(a, b string) float64
}
