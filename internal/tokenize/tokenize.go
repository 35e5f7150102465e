// Package tokenize splits target-language verse text into word tokens.
//
// A word is a maximal run of letters and combining marks. Text is
// normalised to NFC first so precomposed and decomposed spellings of the
// same word share one identity.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
)

// Words is the default tokenizer.
type Words struct{}

var _ alignment.Tokenizer = Words{}

// Tokenize implements alignment.Tokenizer.
func (Words) Tokenize(text string) alignment.Sentence {
	return Tokenize(text)
}

// Tokenize returns the words of text with positions and occurrences assigned.
func Tokenize(text string) alignment.Sentence {
	split := Split(text)
	tokens := make([]alignment.Token, len(split))
	for i, w := range split {
		tokens[i] = alignment.Token{Text: w}
	}
	return alignment.Number(tokens)
}

// Split returns the words of text in order.
func Split(text string) []string {
	text = norm.NFC.String(text)

	var words []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// Normalize returns the words of text joined by single spaces, the same
// form Tokenize(text).String() produces.
func Normalize(text string) string {
	return strings.Join(Split(text), " ")
}

// NormalizeWord returns the NFC form of a single word with surrounding
// space trimmed.
func NormalizeWord(word string) string {
	return norm.NFC.String(strings.TrimSpace(word))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}
