package matcher

import (
	"unicode"
)

// runeOffsets maps rune positions in s to byte offsets. The extra trailing
// entry is len(s), so offsets[len(runes)] is the end of the string.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func allAlnum(runes []rune) bool {
	for _, r := range runes {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

func hasPrefixAt(haystack []rune, at int, needle []rune) bool {
	if at+len(needle) > len(haystack) {
		return false
	}
	for i, r := range needle {
		if haystack[at+i] != r {
			return false
		}
	}
	return true
}

// findToken returns the rune range of the first case-insensitive occurrence of
// needle in text. A needle made only of letters and digits must not be glued
// to a letter or digit on either side, so "cat" never fires inside "category".
func findToken(text, needle string) (start, end int, ok bool) {
	pat := foldRunes(needle)
	if len(pat) == 0 {
		return 0, 0, false
	}
	hay := foldRunes(text)
	bounded := allAlnum(pat)

	for i := 0; i+len(pat) <= len(hay); i++ {
		if !hasPrefixAt(hay, i, pat) {
			continue
		}
		j := i + len(pat)
		if bounded {
			if i > 0 && isAlnum(hay[i-1]) {
				continue
			}
			if j < len(hay) && isAlnum(hay[j]) {
				continue
			}
		}
		return i, j, true
	}
	return 0, 0, false
}
