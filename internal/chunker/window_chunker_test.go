package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconstruct(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		b.WriteString(string([]rune(c)[overlap:]))
	}
	return b.String()
}

func TestChunkReconstructsOriginalText(t *testing.T) {
	texts := []string{
		strings.Repeat("a", 5000),
		strings.Repeat("A sentence about policies. ", 300),
		strings.Repeat("First paragraph.\n\nSecond paragraph with more words.\n", 120),
		"short text, single chunk",
	}
	c := NewWindowChunker(1000, 200)
	for _, text := range texts {
		chunks := c.Chunk(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, text, reconstruct(chunks, c.Overlap()))
	}
}

func TestChunkWindowBound(t *testing.T) {
	c := NewWindowChunker(100, 20)
	chunks := c.Chunk(strings.Repeat("word and more filler text. ", 60))
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	c := NewWindowChunker(1000, 200)
	chunks := c.Chunk("just a short note")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a short note", chunks[0])
}

func TestChunkEmptyText(t *testing.T) {
	c := NewWindowChunker(1000, 200)
	assert.Nil(t, c.Chunk(""))
	assert.Nil(t, c.Chunk("   \n\t "))
}

func TestChunkPrefersSentenceBreaks(t *testing.T) {
	// Sentences of ~40 chars; each window end should land just after a
	// period rather than mid-sentence.
	text := strings.Repeat("The claim covers inpatient treatments only. ", 50)
	c := NewWindowChunker(200, 40)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 2)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "."), "chunk should end on a sentence break: %q", chunk)
	}
	assert.Equal(t, text, reconstruct(chunks, c.Overlap()))
}

func TestNewWindowChunkerDefaults(t *testing.T) {
	c := NewWindowChunker(0, -1)
	assert.Equal(t, 1000, c.Window())
	assert.Equal(t, 200, c.Overlap())

	// overlap must stay below the window
	c = NewWindowChunker(100, 150)
	assert.Less(t, c.Overlap(), c.Window())
}
