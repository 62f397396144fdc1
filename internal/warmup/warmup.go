package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_filename_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
)

// Matcher is the part of a filename matcher exercised during warmup.
type Matcher interface {
	FuzzyMatch(requested, actual string) bool
}

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Length in runes of the sample filenames
	SampleNameSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     1000,
		SampleNameSize: 120,
		Duration:       5 * time.Second,
		ForceGC:        true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	matchers    []Matcher
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterMatcher adds a matcher to be warmed up
func (wm *Manager) RegisterMatcher(m Matcher) {
	wm.matchers = append(wm.matchers, m)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp fills the edit-distance buffer pools and runs every registered
// component until the iterations are done or the duration elapses.
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.matchers)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	levenshtein.WarmPool(wm.config.Concurrency*2, wm.config.SampleNameSize)

	original := GenerateSampleName(wm.config.SampleNameSize)
	similar := GenerateSimilarName(original, 0.1)
	different := GenerateSimilarName(original, 0.5)
	decorated := "【" + strings.ToUpper(original) + "】"

	wm.run(warmupCtx, "normalizers", len(wm.normalizers), func(j int) {
		for _, normalizer := range wm.normalizers {
			_ = normalizer.Normalize(decorated)
		}
	})

	wm.run(warmupCtx, "matchers", len(wm.matchers), func(j int) {
		for _, m := range wm.matchers {
			switch j % 3 {
			case 0:
				_ = m.FuzzyMatch(original, decorated)
			case 1:
				_ = m.FuzzyMatch(original, similar)
			default:
				_ = m.FuzzyMatch(original, different)
			}
		}
	})

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

func (wm *Manager) run(ctx context.Context, kind string, count int, iteration func(j int)) {
	if count == 0 {
		return
	}

	wm.logger.Debug("Warming up "+kind, "count", count)

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				iteration(j)
			}
		}()
	}

	wg.Wait()
}

// GenerateSampleName creates a filename-like string of roughly size runes
func GenerateSampleName(size int) string {
	words := []string{
		"holiday", "video", "part", "tutorial", "episode", "final", "cut",
		"1080p", "remastered", "season", "clip", "live", "concert", "edition",
	}

	var sb strings.Builder
	for i := 0; sb.Len() < size; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(words[i%len(words)])
	}

	result := sb.String()
	if len(result) > size {
		result = result[:size]
	}
	return result + ".mp4"
}

// GenerateSimilarName replaces a diffRatio share of the words in original
func GenerateSimilarName(original string, diffRatio float64) string {
	words := strings.Fields(original)
	changeCount := int(float64(len(words)) * diffRatio)

	replacements := []string{"remix", "draft", "copy", "alt", "backup"}

	newWords := make([]string, len(words))
	copy(newWords, words)
	for i := 0; i < changeCount && i < len(newWords); i++ {
		newWords[i] = replacements[i%len(replacements)]
	}

	return strings.Join(newWords, " ")
}
