package ingestion

import (
	"regexp"
	"strings"
)

// Defaults for the chunk window. MaxChars must stay above Overlap or the
// cursor would stop advancing.
const (
	DefaultChunkMaxChars = 1600
	DefaultChunkOverlap  = 200
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses whitespace runs to single spaces and trims.
// ChunkText expects its input to have gone through this first.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ChunkText splits normalized text into overlapping fixed-size windows.
// Every character is covered by at least one chunk and adjacent chunks
// share exactly overlap characters, except possibly the shorter final
// chunk. Empty text yields no chunks.
func ChunkText(text string, maxChars, overlap int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(text) {
		end := min(len(text), i+maxChars)
		chunks = append(chunks, text[i:end])
		if end == len(text) {
			break
		}
		i = max(0, end-overlap)
	}
	return chunks
}
