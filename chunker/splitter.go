package chunker

import (
	"strings"
)

// Splitter splits text into overlapping chunks by recursively trying a list
// of separators, largest unit first. Paragraph breaks are preferred over
// line breaks, line breaks over word breaks.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the given chunk size and overlap in
// characters. Invalid values fall back to defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 10000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Split breaks text into chunks of at most chunkSize characters with
// chunkOverlap characters carried over between consecutive chunks.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep, rest := pickSeparator(text, separators)

	var pieces []string
	if sep == "" {
		// No separator left: hard-cut the text.
		for i := 0; i < len(text); i += s.chunkSize {
			end := i + s.chunkSize
			if end > len(text) {
				end = len(text)
			}
			pieces = append(pieces, text[i:end])
		}
	} else {
		for _, p := range strings.Split(text, sep) {
			if p == "" {
				continue
			}
			if len(p) > s.chunkSize {
				// Piece still too large, recurse with finer separators.
				pieces = append(pieces, s.split(p, rest)...)
			} else {
				pieces = append(pieces, p)
			}
		}
	}

	return s.merge(pieces, sep)
}

// merge greedily joins pieces into chunks up to chunkSize, carrying trailing
// pieces totalling at most chunkOverlap into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	var chunks []string
	var current []string
	currentLen := 0
	fresh := 0 // pieces added since the last flush

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		// Keep trailing pieces for overlap with the next chunk.
		var kept []string
		keptLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			pl := len(current[i]) + len(sep)
			if keptLen+pl > s.chunkOverlap {
				break
			}
			kept = append([]string{current[i]}, kept...)
			keptLen += pl
		}
		current = kept
		currentLen = keptLen
		fresh = 0
	}

	for _, p := range pieces {
		pl := len(p) + len(sep)
		if currentLen+pl > s.chunkSize && currentLen > 0 {
			flush()
			// The carried overlap plus a large piece can still overflow;
			// shed overlap from the front until the piece fits.
			for currentLen > 0 && currentLen+pl > s.chunkSize {
				currentLen -= len(current[0]) + len(sep)
				current = current[1:]
			}
		}
		current = append(current, p)
		currentLen += pl
		fresh++
	}

	// Final chunk, but only if it holds text beyond the carried overlap.
	if fresh > 0 {
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

// pickSeparator returns the first separator present in the text and the
// remaining finer separators to recurse with.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}
