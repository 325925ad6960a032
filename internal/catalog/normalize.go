package catalog

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldPool holds NFD -> strip combining marks -> NFC chains.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// fold lowercases s and strips combining diacritics ("Angénieux" -> "angenieux").
func fold(s string) string {
	s = strings.ToLower(s)
	if isASCII(s) {
		return s
	}

	t := foldPool.Get().(transform.Transformer)
	defer func() {
		t.Reset()
		foldPool.Put(t)
	}()

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// noiseWords are removed anywhere they occur, including mid-word.
var noiseWords = []string{"series", "edition"}

// Normalize returns the grouping key for a manufacturer or series name. It
// folds case and diacritics, drops whitespace, hyphens and periods, and
// removes every occurrence of "series" and "edition". Normalize is
// idempotent: removal repeats until no noise word remains.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = fold(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			return -1
		}
		return r
	}, s)

	for {
		before := s
		for _, w := range noiseWords {
			s = strings.ReplaceAll(s, w, "")
		}
		if s == before {
			return s
		}
	}
}
