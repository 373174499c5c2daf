package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the chunk character limit used by the ingestion pipeline.
const DefaultMaxChars = 400

// SentenceChunker splits text into chunks of at most maxChars characters,
// cutting at the rightmost sentence boundary inside the current window.
// It is deterministic, produces no overlap and never reorders text. Because
// it only looks inside the window, a sentence boundary further than maxChars
// from the last cut is never used.
type SentenceChunker struct {
	maxChars int
}

func NewSentenceChunker(maxChars int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &SentenceChunker{maxChars: maxChars}
}

// Split chunks the text. Counting is rune-based so multi-byte characters
// count as one. Empty or whitespace-only input yields no chunks.
func (c *SentenceChunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		if len(runes)-start <= c.maxChars {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		window := string(runes[start : start+c.maxChars])
		cut := lastBoundary(window)
		if cut < 0 {
			cut = c.maxChars
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:start+cut])))
		start += cut
	}
	return chunks
}

// lastBoundary returns the rune length of the window prefix ending just after
// the rightmost sentence terminator + space, or -1 if there is none.
func lastBoundary(window string) int {
	pos := max(
		strings.LastIndex(window, ". "),
		strings.LastIndex(window, "? "),
		strings.LastIndex(window, "! "),
	)
	if pos < 0 {
		return -1
	}
	return utf8.RuneCountInString(window[:pos]) + 2
}
