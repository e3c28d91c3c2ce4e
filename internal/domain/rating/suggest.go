package rating

import "github.com/promptelo/promptelo/internal/domain/heuristics"

// suggestionThreshold: criteria at or above this need no advice.
const suggestionThreshold = 0.7

var suggestions = map[Criterion]string{
	Clarity:     "Use specific action verbs (create, implement, fix) and avoid vague language like 'something' or 'stuff'. Structure your request in clear sentences.",
	Specificity: "Include file names, function names, or code snippets. Mention specific technologies, versions, or constraints that are relevant.",
	Context:     "Explain your current situation, what you've tried, and any constraints. Include error messages or relevant background information.",
	Creativity:  "Consider asking about alternative solutions, best practices, or trade-offs. Frame problems in interesting or novel ways.",
}

const suggestionAllGood = "Your prompt scores well across all criteria. Keep up the great work!"

// suggestionFor picks advice for the lowest-scoring local criterion.
// Deterministic: ties resolve in the fixed order clarity, specificity,
// context, creativity.
func suggestionFor(scores heuristics.Scores) string {
	ordered := []struct {
		criterion Criterion
		score     float64
	}{
		{Clarity, scores.Clarity},
		{Specificity, scores.Specificity},
		{Context, scores.Context},
		{Creativity, scores.Creativity},
	}

	lowest := ordered[0]
	for _, c := range ordered[1:] {
		if c.score < lowest.score {
			lowest = c
		}
	}
	if lowest.score >= suggestionThreshold {
		return suggestionAllGood
	}
	return suggestions[lowest.criterion]
}
