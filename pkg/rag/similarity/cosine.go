package similarity

import "math"

// Compare scores a against b by cosine similarity. comparable is false when
// either vector is missing or their lengths differ; score is then -1.
// A zero-magnitude vector is comparable and scores 0.
func Compare(a, b []float32) (score float64, comparable bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// Cosine is Compare without the comparability flag.
func Cosine(a, b []float32) float64 {
	score, _ := Compare(a, b)
	return score
}
