// Package plagiarism scores essay text against a reference corpus using
// combined cosine and Jaccard similarity over k-shingle profiles.
package plagiarism

import "strings"

// shingleSize is the k-gram length used for both similarity metrics.
const shingleSize = 3

// profile maps each k-shingle of a string to its occurrence count. Runs of
// whitespace are collapsed to a single space before shingling so formatting
// differences do not affect scores.
func profile(s string) map[string]int {
	normalized := strings.Join(strings.Fields(s), " ")
	runes := []rune(normalized)
	if len(runes) < shingleSize {
		return nil
	}
	p := make(map[string]int, len(runes)-shingleSize+1)
	for i := 0; i+shingleSize <= len(runes); i++ {
		p[string(runes[i:i+shingleSize])]++
	}
	return p
}
