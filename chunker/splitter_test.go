package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(100, 10)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(100, 10)
	chunks := s.Split("a short paragraph")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph", chunks[0])
}

func TestSplitHonorsChunkSize(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("one two three four five. ", 40)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50, "chunk exceeds size limit: %q", c)
		assert.NotEmpty(t, c)
	}
}

func TestSplitHonorsChunkSizeWithLargeOverlap(t *testing.T) {
	// A small paragraph followed by large ones: the small one is carried as
	// overlap and must be shed when the next paragraph would not fit.
	s := NewSplitter(50, 20)
	text := strings.Repeat("a", 18) + "\n\n" + strings.Repeat("b", 45) + "\n\n" + strings.Repeat("c", 45)
	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50, "chunk exceeds size limit: %q", c)
	}
	// All paragraphs survive in order.
	assert.Equal(t, strings.Repeat("a", 18), chunks[0])
	assert.Contains(t, chunks[1], "bbb")
	assert.Contains(t, chunks[len(chunks)-1], "ccc")
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	s := NewSplitter(30, 0)
	text := "first paragraph here\n\nsecond paragraph here\n\nthird one"
	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "first paragraph here", chunks[0])
}

func TestSplitOverlapCarriesText(t *testing.T) {
	s := NewSplitter(40, 15)
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	// Consecutive chunks must share some trailing/leading words.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		lastWord := prevWords[len(prevWords)-1]
		assert.Contains(t, chunks[i], lastWord,
			"chunk %d does not overlap with its predecessor", i)
	}
}

func TestSplitUnbrokenTextHardCut(t *testing.T) {
	s := NewSplitter(20, 0)
	text := strings.Repeat("x", 55)
	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 3)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 20)
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, 55)
}
