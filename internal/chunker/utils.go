package chunker

// cut preferences, strongest first
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
}

// finds the cut position for the window [start, end)
// a cut must leave the next window (cut - overlap) strictly after start, and avoids
// producing windows shorter than half the target size when a separator sits too early
func (s *Segmenter) cut(runes []rune, start, end int) int {
	lowerBound := start + max(s.opts.Overlap+1, s.opts.Size/2)

	for _, sep := range separators {
		for i := end - len(sep); i >= start; i-- {
			pos := i + len(sep)
			if pos < lowerBound {
				break
			}

			if hasPrefixAt(runes, i, sep) {
				return pos
			}
		}
	}

	return end
}

func hasPrefixAt(runes []rune, i int, sep []rune) bool {
	if i < 0 || i+len(sep) > len(runes) {
		return false
	}

	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}

	return true
}
