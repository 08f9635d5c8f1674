package chunking

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	spacedBreak = regexp.MustCompile(` ?\n ?`)
	newlineRuns = regexp.MustCompile(`\n{2,}`)
)

// Splitter cuts normalized text into overlapping chunks, snapping chunk
// boundaries to sentence ends where possible so retrieval units stay readable.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split is pure: identical input yields an identical chunk sequence, and
// every character of the normalized text lands in at least one chunk.
func (s *Splitter) Split(text string) []string {
	runes := []rune(normalize(text))
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.snapBoundary(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}

		// Always move forward, even when boundary snapping collapsed the
		// window to less than the overlap.
		next := end - s.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return out
}

// snapBoundary prefers the last sentence end in the window's final 40%, then
// a paragraph break past the midpoint, then the unmodified window edge.
func (s *Splitter) snapBoundary(runes []rune, start, end int) int {
	minSentence := start + (end-start)*6/10
	for i := end - 1; i >= minSentence; i-- {
		if isSentenceEnd(runes[i]) && i+1 < len(runes) && isWhitespace(runes[i+1]) {
			return i + 1
		}
	}

	midpoint := start + (end-start)/2
	for i := end - 2; i > midpoint; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}

	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// normalize collapses runs of spaces and tabs to a single space and runs of
// blank lines to exactly one, keeping paragraph breaks intact.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = spacedBreak.ReplaceAllString(text, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
