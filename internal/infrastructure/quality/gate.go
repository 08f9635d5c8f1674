// Package quality gates extracted text before it is persisted or indexed.
// The heuristics catch the typical failure modes of PDF extraction and OCR:
// empty output, binary noise and repeated artifacts.
package quality

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dartos/dartos/internal/core/domain"
)

const (
	minTextLength    = 50
	minWordCount     = 10
	maxSpecialRatio  = 0.30
	maxCharRunLength = 10
)

// Gate is a stateless validator; the zero value is ready to use.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Validate runs the checks in a fixed priority order and short-circuits on
// the first failure, so the same text always yields the same verdict.
func (g *Gate) Validate(text string) domain.TextVerdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return invalid("no text content")
	}

	runes := []rune(trimmed)
	if len(runes) < minTextLength {
		return invalid(fmt.Sprintf("text too short (%d characters)", len(runes)))
	}

	special := 0
	for _, r := range runes {
		if !isRegularChar(r) {
			special++
		}
	}
	ratio := float64(special) / float64(len(runes))
	if ratio > maxSpecialRatio {
		return invalid(fmt.Sprintf("too many special characters (%.2f%%) - possible OCR failure", ratio*100))
	}

	if hasLongCharRun(runes) {
		return invalid("repetitive characters detected")
	}

	if words := len(strings.Fields(trimmed)); words < minWordCount {
		return invalid(fmt.Sprintf("insufficient word count (%d words)", words))
	}

	return domain.TextVerdict{Valid: true}
}

func invalid(reason string) domain.TextVerdict {
	return domain.TextVerdict{Valid: false, Reason: reason}
}

func isRegularChar(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(".,!?;:-()[]{}", r)
}

// hasLongCharRun reports any single character repeating more than
// maxCharRunLength times in a row, line breaks included.
func hasLongCharRun(runes []rune) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run > maxCharRunLength {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}
