package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"zero overlap", Options{Size: 10, Overlap: 0}, false},
		{"zero size", Options{Size: 0, Overlap: 0}, true},
		{"negative overlap", Options{Size: 10, Overlap: -1}, true},
		{"overlap equals size", Options{Size: 10, Overlap: 10}, true},
		{"overlap above size", Options{Size: 10, Overlap: 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitShortInputIsSingleChunk(t *testing.T) {
	s, err := New(Options{Size: 50, Overlap: 10})
	require.NoError(t, err)

	for _, input := range []string{"", "hello", strings.Repeat("x", 50)} {
		chunks := s.Segment(input)
		require.Len(t, chunks, 1)
		assert.Equal(t, input, chunks[0])
	}
}

func TestSplitRespectsSizeAndOverlap(t *testing.T) {
	s, err := New(Options{Size: 40, Overlap: 8})
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 40)
		assert.Equal(t, c.End-c.Start, utf8.RuneCountInString(c.Text))

		if i > 0 {
			assert.Equal(t, 8, chunks[i-1].End-c.Start, "overlap between chunk %d and %d", i-1, i)
			assert.Greater(t, c.Start, chunks[i-1].Start)
		}
	}

	assert.Equal(t, utf8.RuneCountInString(text), chunks[len(chunks)-1].End)
}

func TestSplitPrefersWordBoundaries(t *testing.T) {
	s, err := New(Options{Size: 20, Overlap: 0})
	require.NoError(t, err)

	chunks := s.Segment("alpha beta gamma delta epsilon zeta eta theta")

	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, " "), "expected cut after a space, got %q", c)
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	s, err := New(Options{Size: 30, Overlap: 5})
	require.NoError(t, err)

	text := "first paragraph here.\n\nsecond paragraph follows and keeps going for a while"
	chunks := s.Segment(text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "first paragraph here.\n\n", chunks[0])
}

func TestSplitIsDeterministic(t *testing.T) {
	s, err := New(DefaultOptions())
	require.NoError(t, err)

	text := strings.Repeat("Refunds are processed within 30 days.\n", 100)
	assert.Equal(t, s.Segment(text), s.Segment(text))
}

func TestReassembleCoversInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abc de\n.!?é日本 ")

	optsList := []Options{
		{Size: 1, Overlap: 0},
		{Size: 7, Overlap: 3},
		{Size: 25, Overlap: 0},
		{Size: 64, Overlap: 16},
		DefaultOptions(),
	}

	for _, opts := range optsList {
		s, err := New(opts)
		require.NoError(t, err)

		for range 50 {
			length := rng.Intn(3000)
			runes := make([]rune, length)

			for i := range runes {
				runes[i] = alphabet[rng.Intn(len(alphabet))]
			}

			text := string(runes)
			chunks := s.Split(text)

			require.NotEmpty(t, chunks)
			require.Equal(t, text, Reassemble(chunks), "size=%d overlap=%d len=%d", opts.Size, opts.Overlap, length)
		}
	}
}
