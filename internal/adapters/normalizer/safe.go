package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
)

// MaxFilenameRunes caps the length of generated filenames.
const MaxFilenameRunes = 200

var unsafeFilenameChars = regexp.MustCompile(`[\[\](){}<>:"'/\\|?*\x00-\x1F【】（）。，、；：？！‘’“”…]+`)

// SafeNamer turns free-text descriptions into filenames a downloader can write.
type SafeNamer struct {
	clock clockwork.Clock
}

// NewSafeNamer creates a SafeNamer. The clock names files whose description is
// empty; nil selects the real clock.
func NewSafeNamer(clock clockwork.Clock) *SafeNamer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SafeNamer{clock: clock}
}

// Convert replaces characters that are unsafe in filenames with spaces, collapses
// whitespace and limits the result to MaxFilenameRunes, keeping the extension.
func (n *SafeNamer) Convert(description string) string {
	processed := strings.TrimSpace(description)
	if processed == "" {
		return n.unnamed()
	}

	processed = unsafeFilenameChars.ReplaceAllString(processed, " ")
	processed = strings.Join(strings.Fields(processed), " ")

	if runes := []rune(processed); len(runes) > MaxFilenameRunes {
		processed = truncateKeepingExtension(runes, MaxFilenameRunes)
	}

	if processed == "" {
		return n.unnamed()
	}
	return processed
}

func (n *SafeNamer) unnamed() string {
	return fmt.Sprintf("unnamed_file_%d", n.clock.Now().UnixMilli())
}

func truncateKeepingExtension(runes []rune, limit int) string {
	lastDot := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '.' {
			lastDot = i
			break
		}
	}

	if lastDot > 0 {
		ext := runes[lastDot:]
		if len(ext) < limit {
			return string(runes[:limit-len(ext)]) + string(ext)
		}
	}
	return string(runes[:limit])
}
