// Package novelty turns neighbor similarities into a novelty score.
//
// The score is a decreasing function of how similar the submission is to the
// stored corpus: exact repeats land near 0, unprecedented prompts near 1.
package novelty

import "math"

// Scoring constants. Neighbors are rank-weighted so the closest match
// dominates, then the weighted similarity runs through a piecewise transform
// that spreads the interesting 0.7-1.0 similarity band across most of the
// score range.
const (
	topNeighborCount = 10

	duplicateBand = 0.95
	similarBand   = 0.85
	relatedBand   = 0.70

	countDampBase   = 0.7
	countDampWeight = 0.3
	countDampSlope  = 0.05
)

// Score computes a novelty score in [0,1] from neighbor similarities, which
// must be ordered by decreasing similarity. An empty slice means the corpus
// holds nothing comparable and yields 1.
func Score(similarities []float64) float64 {
	if len(similarities) == 0 {
		return 1.0
	}

	top := similarities
	if len(top) > topNeighborCount {
		top = top[:topNeighborCount]
	}

	var weighted, totalWeight float64
	for i, sim := range top {
		w := 1.0 / float64(i+1)
		weighted += sim * w
		totalWeight += w
	}
	avg := weighted / totalWeight

	var score float64
	switch {
	case avg >= duplicateBand:
		score = 0.1 * (1 - avg) / (1 - duplicateBand)
	case avg >= similarBand:
		score = 0.1 + 0.4*(duplicateBand-avg)/(duplicateBand-similarBand)
	case avg >= relatedBand:
		score = 0.5 + 0.3*(similarBand-avg)/(similarBand-relatedBand)
	default:
		score = 0.8 + 0.2*(relatedBand-avg)/relatedBand
	}

	// Many similar prompts depress novelty even when none is a close match.
	countFactor := 1.0 / (1.0 + float64(len(similarities))*countDampSlope)
	score *= countDampBase + countDampWeight*countFactor

	return math.Max(0, math.Min(1, score))
}

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
