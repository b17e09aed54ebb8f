package plagiarism

import "math"

// cosineSimilarity computes the cosine of the angle between the two shingle
// frequency profiles. Empty profiles score 0.
func cosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot float64
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dot += float64(av) * float64(bv)
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (norm(a) * norm(b))
}

// jaccardSimilarity computes |A∩B| / |A∪B| over the shingle sets.
func jaccardSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CombinedScore is the arithmetic mean of cosine and Jaccard similarity
// between two texts. Identical inputs always yield identical scores.
func CombinedScore(text, reference string) float64 {
	a := profile(text)
	b := profile(reference)
	return (cosineSimilarity(a, b) + jaccardSimilarity(a, b)) / 2
}

func norm(p map[string]int) float64 {
	var sum float64
	for _, v := range p {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
