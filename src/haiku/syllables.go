package haiku

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// EmoteRegex matches Discord custom emotes such as <:name:1234> and <a:name:1234>.
var EmoteRegex = regexp.MustCompile(`(?i)<a?:\w+:\d+>`)

// EstimateSyllables returns an estimate of the number of English syllables in token. Tokens with nothing
// countable in them, such as punctuation or emoji, are worth 0 syllables.
func EstimateSyllables(token string) int {
	word := normalize(token)
	if word == "" {
		return 0
	}
	if count, ok := exceptions[word]; ok {
		return count
	}

	count := 0
	for _, suffix := range noChangeSuffixes {
		if root, ok := trimSuffix(word, suffix); ok {
			count += vowelGroups(suffix)
			word = root
		}
	}
	for _, suffix := range addingSuffixes {
		if root, ok := trimSuffix(word, suffix); ok {
			count += vowelGroups(suffix) + 1
			word = root
		}
	}

	groups := vowelGroups(word)
	count += groups

	if strings.HasSuffix(word, "ces") || strings.HasSuffix(word, "ges") {
		count++
	}
	word = strings.TrimSuffix(word, "s")

	if utf8.RuneCountInString(word) <= 3 {
		// short roots are a single syllable no matter how their vowels are spelled
		return nonNegative(count - vowelGroups(word) + 1)
	}

	if count > 1 && strings.HasSuffix(word, "ed") && !strings.HasSuffix(word, "ted") {
		count--
	}
	if strings.HasSuffix(word, "e") && !hasAnySuffix(word, "ae", "ee", "ie", "oe", "ue") {
		count--
	}

	for _, prefix := range extraPrefixes {
		if strings.HasPrefix(word, prefix) {
			count++
		}
	}
	for _, prefix := range lessPrefixes {
		if strings.HasPrefix(word, prefix) {
			count--
		}
	}
	for _, suffix := range extraSuffixes {
		if strings.HasSuffix(word, suffix) {
			count++
		}
	}
	for _, suffix := range lessSuffixes {
		if strings.HasSuffix(word, suffix) {
			count--
		}
	}
	return nonNegative(count)
}

// normalize lowercases token, drops custom emotes and keeps only Latin letters. Accented vowels survive in
// composed form so they can still be counted.
func normalize(token string) string {
	s := strings.ToLower(norm.NFC.String(token))
	s = EmoteRegex.ReplaceAllString(s, " ")

	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) && unicode.In(r, unicode.Latin) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// trimSuffix removes suffix from word, provided what remains still has a vowel group of its own.
func trimSuffix(word, suffix string) (string, bool) {
	if !strings.HasSuffix(word, suffix) {
		return word, false
	}
	root := word[:len(word)-len(suffix)]
	if vowelGroups(root) == 0 {
		return word, false
	}
	return root, true
}

// vowelGroups counts maximal runs of vowels in word. A vowel carrying a diacritic (the é in café, the ï in
// naïve) always starts a new group.
func vowelGroups(word string) int {
	groups := 0
	prev := false
	for _, r := range word {
		vowel, marked := vowelInfo(r)
		if vowel && (!prev || marked) {
			groups++
		}
		prev = vowel
	}
	return groups
}

func vowelInfo(r rune) (vowel bool, marked bool) {
	base := r
	if r >= utf8.RuneSelf {
		decomposed := norm.NFD.String(string(r))
		var size int
		base, size = utf8.DecodeRuneInString(decomposed)
		marked = size < len(decomposed)
	}
	return isVowel(base), marked
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func hasAnySuffix(word string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
