package normalizer

import (
	"errors"
	"fmt"

	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// NormalizerFactory creates normalizers by type
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalizer implementation
type NormalizerType int

const (
	// CanonicalNormalizerType produces the plain canonical filename form
	CanonicalNormalizerType NormalizerType = iota
	// WidthFoldingNormalizerType folds full-width characters before canonicalizing
	WidthFoldingNormalizerType
)

// ErrUnknownNormalizer is returned by ParseNormalizerType for unsupported names.
var ErrUnknownNormalizer = errors.New("unknown normalizer")

// String returns the name accepted by ParseNormalizerType.
func (t NormalizerType) String() string {
	switch t {
	case WidthFoldingNormalizerType:
		return "width-folding"
	default:
		return "canonical"
	}
}

// ParseNormalizerType maps a configuration name to a NormalizerType.
func ParseNormalizerType(name string) (NormalizerType, error) {
	switch name {
	case "", "canonical":
		return CanonicalNormalizerType, nil
	case "width-folding":
		return WidthFoldingNormalizerType, nil
	default:
		return CanonicalNormalizerType, fmt.Errorf("%w: %q", ErrUnknownNormalizer, name)
	}
}

// CreateNormalizer creates a normalizer of the specified type
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case WidthFoldingNormalizerType:
		return NewWidthFoldingNormalizer(NewFilenameNormalizer())
	default:
		return NewFilenameNormalizer()
	}
}
