package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordRegex matches maximal runs of letters, digits and underscore.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// minTermLength is the minimum number of characters a term must have.
const minTermLength = 3

var stopwords = map[string]struct{}{
	"the": {}, "cnt": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// Tokenize lowercases text and splits it into word tokens. No filtering is applied.
func Tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the tokens of text that survive stopword and length filtering.
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := tokens[:0]
	for _, t := range tokens {
		if _, stop := stopwords[t]; stop {
			continue
		}
		if utf8.RuneCountInString(t) < minTermLength {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

// IsStopword reports whether term is dropped as a stopword.
func IsStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}
