package curated

import (
	"regexp"
	"strings"
	"unicode"
)

var fillerWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "by": {},
	"with": {}, "about": {}, "your": {}, "my": {}, "our": {}, "please": {},
	"tell": {}, "me": {},
}

// expanded before punctuation is stripped so "what's" and "what is" agree
var contractions = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`\b(what|how|where|who|when|why|it|that|there|here)'s\b`), "$1 is"},
	{regexp.MustCompile(`\bcan't\b`), "can not"},
	{regexp.MustCompile(`\bwon't\b`), "will not"},
	{regexp.MustCompile(`\b(\w+)n't\b`), "$1 not"},
	{regexp.MustCompile(`\b(\w+)'re\b`), "$1 are"},
	{regexp.MustCompile(`\b(\w+)'ll\b`), "$1 will"},
	{regexp.MustCompile(`\b(\w+)'ve\b`), "$1 have"},
	{regexp.MustCompile(`\bi'm\b`), "i am"},
}

// lowercases, strips punctuation and filler words
// pure and idempotent; falls back to the stripped form when every word is filler
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "’", "'")

	for _, c := range contractions {
		text = c.pattern.ReplaceAllString(text, c.replace)
	}

	words := strings.Fields(stripPunctuation(text))

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if _, filler := fillerWords[w]; !filler {
			filtered = append(filtered, w)
		}
	}

	if len(filtered) == 0 {
		return strings.Join(words, " ")
	}

	return strings.Join(filtered, " ")
}

// keeps letters, digits, underscore and whitespace
func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}

		return -1
	}, text)
}
