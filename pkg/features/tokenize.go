package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes is the shortest token kept by Tokenize.
const minTokenRunes = 2

// CombinedText joins a visit's domain and title into the text that gets vectorized.
func CombinedText(domain, title string) string {
	return domain + " " + title
}

// foldAccents lowercases text and strips combining marks (é -> e).
func foldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		return strings.ToLower(text)
	}
	return folded
}

// Tokenize splits text into lowercase word tokens of at least two runes.
// Anything that is not a letter, digit or underscore separates tokens.
// Stop words are not removed here.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(foldAccents(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})

	tokens := words[:0]
	for _, word := range words {
		if utf8.RuneCountInString(word) >= minTokenRunes {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Terms tokenizes text and drops any token found in stopWords.
func Terms(text string, stopWords map[string]struct{}) []string {
	tokens := Tokenize(text)
	terms := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}
