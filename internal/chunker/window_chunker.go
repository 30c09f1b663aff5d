package chunker

import "strings"

const (
	defaultWindow  = 1000
	defaultOverlap = 200
)

// WindowChunker splits text into fixed-size character windows with overlap.
// Windows cover the whole text with no gaps; the final window may be shorter.
// Within the tail of a window it prefers a paragraph or sentence break, a
// soft preference that never shrinks a window below half its nominal size.
type WindowChunker struct {
	window  int
	overlap int
}

// NewWindowChunker creates a chunker with the given window and overlap in
// characters. Non-positive or inconsistent values fall back to defaults.
func NewWindowChunker(window, overlap int) *WindowChunker {
	if window <= 0 {
		window = defaultWindow
	}
	if overlap < 0 || overlap >= window {
		overlap = defaultOverlap
		if overlap >= window {
			overlap = window / 5
		}
	}
	return &WindowChunker{window: window, overlap: overlap}
}

// Chunk splits text into overlapping windows. Concatenating the first chunk
// with every later chunk minus its leading overlap reconstructs the input.
func (c *WindowChunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}
	if len(runes) <= c.window {
		return []string{text}
	}
	var chunks []string
	start := 0
	for {
		end := start + c.window
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		end = c.preferBreak(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
		start = end - c.overlap
	}
}

// Window reports the nominal window size in characters.
func (c *WindowChunker) Window() int { return c.window }

// Overlap reports the overlap between consecutive windows in characters.
func (c *WindowChunker) Overlap() int { return c.overlap }

// preferBreak moves the window end back to just after a paragraph, line or
// sentence break when one exists in the tail of the window. The end never
// drops below half the window or below start+overlap, so every chunk still
// makes forward progress.
func (c *WindowChunker) preferBreak(runes []rune, start, end int) int {
	floor := start + c.window/2
	if m := start + c.overlap + 1; floor < m {
		floor = m
	}
	if floor >= end {
		return end
	}
	bestByClass := func(match func(i int) bool) int {
		for i := end - 1; i >= floor; i-- {
			if match(i) {
				return i + 1
			}
		}
		return -1
	}
	// paragraph break, then newline, then sentence end
	if i := bestByClass(func(i int) bool {
		return runes[i] == '\n' && i > 0 && runes[i-1] == '\n'
	}); i > 0 {
		return i
	}
	if i := bestByClass(func(i int) bool { return runes[i] == '\n' }); i > 0 {
		return i
	}
	if i := bestByClass(func(i int) bool {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			return false
		}
		return i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n')
	}); i > 0 {
		return i
	}
	return end
}
