package engine

import (
	"math"
	"sort"
)

// scored pairs a corpus index with its similarity score.
type scored struct {
	idx   int
	score float64
}

// rankTopK scores every candidate against the query vector and returns the
// top k by descending raw cosine similarity (no clamping). Ties keep corpus
// insertion order: candidates arrive in that order and the sort is stable.
// k beyond the candidate count returns all candidates; no candidates returns
// an empty list.
func rankTopK(queryVec []float32, rows [][]float32, candidates []int, k int, minScore float64) []scored {
	ranked := make([]scored, 0, len(candidates))
	qNorm := norm(queryVec)
	for _, i := range candidates {
		score := cosine(queryVec, qNorm, rows[i])
		if minScore > 0 && score < minScore {
			continue
		}
		ranked = append(ranked, scored{idx: i, score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// cosine computes dot(q, v) / (|q| * |v|). A zero-magnitude vector scores 0.
func cosine(q []float32, qNorm float64, v []float32) float64 {
	n := len(q)
	if len(v) < n {
		n = len(v)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(q[i]) * float64(v[i])
	}
	vNorm := norm(v)
	if qNorm == 0 || vNorm == 0 {
		return 0
	}
	return dot / (qNorm * vNorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
