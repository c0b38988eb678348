package chunker

import (
	"fmt"
)

func DefaultOptions() Options {
	return Options{
		Size:    1000,
		Overlap: 150,
	}
}

func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.Size)
	}

	if o.Overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", o.Overlap)
	}

	if o.Overlap >= o.Size {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", o.Overlap, o.Size)
	}

	return nil
}

func New(opts Options) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Segmenter{opts: opts}, nil
}

// returns the chunk texts in order
func (s *Segmenter) Segment(text string) []string {
	chunks := s.Split(text)
	texts := make([]string, len(chunks))

	for i, c := range chunks {
		texts[i] = c.Text
	}

	return texts
}

// splits text into overlapping windows of at most Size runes
// text no longer than Size comes back as a single chunk equal to the input
func (s *Segmenter) Split(text string) []Chunk {
	runes := []rune(text)
	n := len(runes)

	if n <= s.opts.Size {
		return []Chunk{{Index: 0, Text: text, Start: 0, End: n}}
	}

	chunks := make([]Chunk, 0, n/(s.opts.Size-s.opts.Overlap)+1)
	start := 0

	for {
		end := start + s.opts.Size
		if end >= n {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Text:  string(runes[start:]),
				Start: start,
				End:   n,
			})

			break
		}

		end = s.cut(runes, start, end)

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})

		start = end - s.opts.Overlap
	}

	return chunks
}

// rebuilds the original text by dropping each chunk's overlap with its predecessor
func Reassemble(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	out := []rune(chunks[0].Text)

	for i := 1; i < len(chunks); i++ {
		skip := chunks[i-1].End - chunks[i].Start
		runes := []rune(chunks[i].Text)

		if skip < 0 || skip > len(runes) {
			skip = 0
		}

		out = append(out, runes[skip:]...)
	}

	return string(out)
}
