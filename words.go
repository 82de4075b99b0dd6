package wordcrawl

import (
	"golang.org/x/text/cases"
)

// MinTokenLength is the shortest alphabetic run counted as a word.
const MinTokenLength = 2

// Tokenize splits text into case-folded runs of ASCII letters of at least
// MinTokenLength characters. Everything else separates tokens.
func Tokenize(text string) []string {
	// Fold before scanning so compatibility forms (ligatures, the Kelvin
	// sign) land in the ASCII range.
	folded := cases.Fold().String(text)

	var tokens []string
	start := -1
	for i := 0; i <= len(folded); i++ {
		if i < len(folded) && isASCIILetter(folded[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= MinTokenLength {
			tokens = append(tokens, folded[start:i])
		}
		start = -1
	}
	return tokens
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// DefaultStopwords are excluded from the global word-frequency table.
var DefaultStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "aren", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"cannot", "could", "couldn", "did", "didn", "do", "does", "doesn",
	"doing", "don", "down", "during", "each", "few", "for", "from",
	"further", "had", "hadn", "has", "hasn", "have", "haven", "having", "he",
	"her", "here", "hers", "herself", "him", "himself", "his", "how", "if",
	"in", "into", "is", "isn", "it", "its", "itself", "let", "ll", "me",
	"more", "most", "mustn", "my", "myself", "no", "nor", "not", "of", "off",
	"on", "once", "only", "or", "other", "ought", "our", "ours", "ourselves",
	"out", "over", "own", "re", "same", "shan", "she", "should", "shouldn",
	"so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "ve", "very", "was",
	"wasn", "we", "were", "weren", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "won", "would", "wouldn", "you",
	"your", "yours", "yourself", "yourselves",
}
