package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	agnivade "github.com/agnivade/levenshtein"
	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_filename_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_filename_similarity/pkg/search"
	"github.com/baditaflorin/go_filename_similarity/pkg/streaming"
	"github.com/hbollon/go-edlib"
)

// generateName creates a filename of roughly the specified size by repeating a sample
func generateName(size int) string {
	if size <= 0 {
		return ""
	}

	sample := "【Lecture】 Introduction to Algorithms, Part "
	var sb strings.Builder
	sb.Grow(size + 4)

	for sb.Len() < size {
		sb.WriteString(sample)
	}

	return string([]rune(sb.String())[:size]) + ".mp4"
}

// generateLibrary creates n distinct stored filenames
func generateLibrary(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("【Archive】 Episode %05d, Season %d.mkv", i, i%12)
	}
	return names
}

// BenchmarkNormalizers compares the performance of the normalizers
func BenchmarkNormalizers(b *testing.B) {
	short := generateName(20)
	medium := generateName(120)
	long := generateName(1000)

	factory := normalizer.NewNormalizerFactory()

	benchmarks := []struct {
		name     string
		normType normalizer.NormalizerType
		input    string
	}{
		{"Canonical-Short", normalizer.CanonicalNormalizerType, short},
		{"Canonical-Medium", normalizer.CanonicalNormalizerType, medium},
		{"Canonical-Long", normalizer.CanonicalNormalizerType, long},

		{"WidthFolding-Short", normalizer.WidthFoldingNormalizerType, short},
		{"WidthFolding-Medium", normalizer.WidthFoldingNormalizerType, medium},
		{"WidthFolding-Long", normalizer.WidthFoldingNormalizerType, long},
	}

	for _, bm := range benchmarks {
		norm := factory.CreateNormalizer(bm.normType)

		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bm.input)))

			for i := 0; i < b.N; i++ {
				_ = norm.Normalize(bm.input)
			}
		})
	}
}

// BenchmarkDistance compares the pooled distance with the libraries it is tested against
func BenchmarkDistance(b *testing.B) {
	sizes := []int{16, 64, 256}

	for _, size := range sizes {
		a := generateName(size)
		other := strings.Replace(a, "Algorithms", "Algorithmics", 1)

		b.Run(fmt.Sprintf("Pooled-%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = levenshtein.Distance(a, other)
			}
		})

		b.Run(fmt.Sprintf("Agnivade-%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = agnivade.ComputeDistance(a, other)
			}
		})

		b.Run(fmt.Sprintf("Edlib-%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = edlib.LevenshteinDistance(a, other)
			}
		})
	}
}

// BenchmarkFuzzyMatch benchmarks the matcher for each decision path
func BenchmarkFuzzyMatch(b *testing.B) {
	scenarios := []struct {
		name      string
		requested string
		actual    string
	}{
		{"Exact", "【Show】 Ep1.mp4", "show ep1.mp4"},
		{"Containment", "report.pdf", "report.pdf.crdownload"},
		{"Similar", "holiday video.mp4", "holiday videos.mp4"},
		{"Different", "holiday video.mp4", "tax return 2024.pdf"},
		{"Long", generateName(200), generateName(190)},
	}

	algorithms := []filenamesimilarity.Algorithm{
		filenamesimilarity.Algorithm("levenshtein"),
		filenamesimilarity.Algorithm("jaro-winkler"),
	}

	for _, algorithm := range algorithms {
		fm, err := filenamesimilarity.New(
			filenamesimilarity.WithQuietLogger(),
			filenamesimilarity.WithAlgorithm(algorithm),
		)
		if err != nil {
			b.Fatal(err)
		}

		for _, sc := range scenarios {
			b.Run(string(algorithm)+"/"+sc.name, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = fm.FuzzyMatch(sc.requested, sc.actual)
				}
			})
		}
	}
}

// BenchmarkSearch benchmarks ranked search with different worker counts
func BenchmarkSearch(b *testing.B) {
	library := generateLibrary(10000)
	query := "archive episode 04242 season 4.mkv"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, workers := range []int{1, 4, 8} {
		s, err := search.New(search.WithWorkers(workers))
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Workers-%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Search(ctx, query, library); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkStreaming benchmarks line-by-line matching of a directory listing
func BenchmarkStreaming(b *testing.B) {
	listing := strings.Join(generateLibrary(10000), "\n")
	query := "archive episode 04242 season 4.mkv"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sm, err := streaming.NewStreamMatcher()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(listing)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := sm.MatchReader(ctx, query, strings.NewReader(listing)); err != nil {
			b.Fatal(err)
		}
	}
}
