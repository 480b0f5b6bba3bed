package chunker

import (
	"strings"
	"unicode"
)

// DefaultMaxChars is the reference chunk size. Larger chunks keep
// supporting context together at the cost of diluting relevance scores.
const DefaultMaxChars = 900

// SplitSentences splits text into sentence units on `.`, `!` or `?`
// followed by whitespace. This is a heuristic boundary detector, not a
// sentence grammar; abbreviations are not special-cased. Segments are
// trimmed and empty segments dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			if atEnd || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// SentenceChunker packs sentences into bounded-size passages.
type SentenceChunker struct {
	maxChars int
}

// NewSentenceChunker creates a chunker that flushes a passage once
// adding the next sentence would exceed maxChars.
func NewSentenceChunker(maxChars int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &SentenceChunker{maxChars: maxChars}
}

// Chunk greedily accumulates sentences into passages. A buffer is
// flushed when the next sentence would push it over maxChars and it is
// non-empty; the final non-empty buffer is always flushed. A single
// sentence longer than maxChars is emitted whole, never truncated.
func (c *SentenceChunker) Chunk(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buffer []string
	bufferLen := 0

	for _, sentence := range sentences {
		sentenceLen := len(sentence)
		if len(buffer) > 0 && bufferLen+1+sentenceLen > c.maxChars {
			chunks = append(chunks, strings.Join(buffer, " "))
			buffer = buffer[:0]
			bufferLen = 0
		}
		if len(buffer) > 0 {
			bufferLen++ // joining space
		}
		buffer = append(buffer, sentence)
		bufferLen += sentenceLen
	}

	if len(buffer) > 0 {
		chunks = append(chunks, strings.Join(buffer, " "))
	}

	return chunks
}
