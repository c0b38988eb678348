package chunker

// a contiguous window of the source text
// Start and End are rune offsets into the original input, End exclusive
type Chunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// sizes are in characters (runes), overlap must stay below size
type Options struct {
	Size    int
	Overlap int
}

type Segmenter struct {
	opts Options
}
