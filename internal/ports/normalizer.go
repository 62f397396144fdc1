package ports

// Normalizer defines the interface for filename canonicalization.
type Normalizer interface {
	Normalize(filename string) string
}
