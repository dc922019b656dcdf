package wordlist

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxWordRunes bounds practice words so a single flash fits a narrow terminal.
const MaxWordRunes = 18

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns the filter for a language's list. English keeps ASCII
// letters with inner apostrophes; other languages keep any letters. Both
// allow inner hyphens and reject words over MaxWordRunes.
func FilterForLang(lang string) FilterFunc {
	letter := unicode.IsLetter
	inner := func(r rune) bool { return r == '-' }
	if strings.ToLower(lang) == BuiltinLang {
		letter = func(r rune) bool { return r >= 'a' && r <= 'z' }
		inner = func(r rune) bool { return r == '-' || r == '\'' }
	}
	return func(word string) bool {
		return readableWord(word, letter, inner)
	}
}

func readableWord(word string, letter, inner func(rune) bool) bool {
	n := utf8.RuneCountInString(word)
	if n == 0 || n > MaxWordRunes {
		return false
	}
	prevInner := true
	i := 0
	for _, r := range word {
		i++
		switch {
		case letter(r):
			prevInner = false
		case inner(r):
			if prevInner || i == n {
				return false
			}
			prevInner = true
		default:
			return false
		}
	}
	return true
}
