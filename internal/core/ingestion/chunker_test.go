package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	text := "short enough to fit"
	chunks := ChunkText(text, DefaultChunkMaxChars, DefaultChunkOverlap)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkText_ExactWindows(t *testing.T) {
	// 3200 chars with 1600/200 windows: [0,1600) [1400,3000) [2800,3200).
	text := strings.Repeat("abcdefgh", 400)
	chunks := ChunkText(text, 1600, 200)

	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:1600], chunks[0])
	assert.Equal(t, text[1400:3000], chunks[1])
	assert.Equal(t, text[2800:3200], chunks[2])
}

func TestChunkText_OverlapInvariant(t *testing.T) {
	text := strings.Repeat("x y z w ", 1000)
	overlap := 200
	chunks := ChunkText(text, 1600, overlap)

	require.Greater(t, len(chunks), 1)
	for i := 0; i < len(chunks)-2; i++ {
		tail := chunks[i][len(chunks[i])-overlap:]
		head := chunks[i+1][:overlap]
		assert.Equal(t, tail, head, "chunks %d and %d must overlap by %d chars", i, i+1, overlap)
	}
}

func TestChunkText_Coverage(t *testing.T) {
	text := strings.Repeat("0123456789", 777)
	maxChars, overlap := 1600, 200
	chunks := ChunkText(text, maxChars, overlap)

	// Reassemble by dropping each chunk's leading overlap and compare.
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		sb.WriteString(c[overlap:])
	}
	assert.Equal(t, text, sb.String())
}

func TestChunkText_Termination(t *testing.T) {
	text := strings.Repeat("a", 100000)
	maxChars, overlap := 1600, 200
	chunks := ChunkText(text, maxChars, overlap)

	// Bounded by ceil(len/(maxChars-overlap)).
	bound := (len(text) + maxChars - overlap - 1) / (maxChars - overlap)
	assert.LessOrEqual(t, len(chunks), bound)
}

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, ChunkText("", 1600, 200))
	assert.Nil(t, ChunkText(NormalizeText("   "), 1600, 200))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  a\n\tb   c\r\n"))
	assert.Equal(t, "", NormalizeText(" \t\n "))
}
