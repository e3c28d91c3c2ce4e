// Package rating combines the four local criteria and the novelty outcome
// into a bounded Elo-style rating with a tier label.
package rating

import (
	"math"

	"github.com/promptelo/promptelo/internal/domain/heuristics"
	"github.com/promptelo/promptelo/internal/domain/types"
)

// Criterion names a scored dimension.
type Criterion string

// The five criteria feeding the rating.
const (
	Clarity     Criterion = "clarity"
	Specificity Criterion = "specificity"
	Context     Criterion = "context"
	Creativity  Criterion = "creativity"
	Novelty     Criterion = "novelty"
)

// Fixed criterion weights. They sum to 1; when novelty is unavailable its
// share is redistributed proportionally across the remaining four.
const (
	weightClarity     = 0.25
	weightSpecificity = 0.25
	weightContext     = 0.20
	weightCreativity  = 0.15
	weightNovelty     = 0.15
)

// Elo mapping constants: a weighted sum of 0.5 lands on the base rating and
// the full [0,1] range spans base±range/2, with headroom for the synergy
// bonus up to the cap.
const (
	eloBase  = 1200
	eloRange = 1200
	eloMin   = 0
	eloMax   = 2400

	synergyBonus         = 100
	synergyThreshold     = 0.7
	exceptionalThreshold = 0.8
)

// Outcome is the tagged result of a novelty lookup: either a real Result or
// Unavailable. It replaces sentinel scores so the aggregator must handle the
// degraded case explicitly.
type Outcome struct {
	ok  bool
	res types.Result
}

// Available wraps a successful novelty result.
func Available(res types.Result) Outcome { return Outcome{ok: true, res: res} }

// Unavailable marks the novelty service as unreachable.
func Unavailable() Outcome { return Outcome{} }

// Result returns the novelty result and whether one is present.
func (o Outcome) Result() (types.Result, bool) { return o.res, o.ok }

// Contribution is one criterion's share of the final rating.
type Contribution struct {
	// Score is the raw criterion score in [0,1]; meaningless when Available is false.
	Score float64 `json:"score"`
	// Weight is the effective (possibly renormalized) weight applied.
	Weight float64 `json:"weight"`
	// Available is false only for novelty when the service was unreachable.
	Available bool `json:"available"`
}

// Summary is the full aggregation output.
type Summary struct {
	Rating            int                        `json:"elo"`
	Tier              Tier                       `json:"tier"`
	Contributions     map[Criterion]Contribution `json:"contributions"`
	NoveltyAvailable  bool                       `json:"novelty_available"`
	NoveltyPercentile float64                    `json:"novelty_percentile,omitempty"`
	Suggestion        string                     `json:"suggestion"`
}

// Aggregate combines local criteria with the novelty outcome. It is a pure
// function: the same inputs always produce the same Summary.
func Aggregate(scores heuristics.Scores, outcome Outcome) Summary {
	local := map[Criterion]float64{
		Clarity:     scores.Clarity,
		Specificity: scores.Specificity,
		Context:     scores.Context,
		Creativity:  scores.Creativity,
	}
	baseWeights := map[Criterion]float64{
		Clarity:     weightClarity,
		Specificity: weightSpecificity,
		Context:     weightContext,
		Creativity:  weightCreativity,
	}

	res, ok := outcome.Result()

	weights := make(map[Criterion]float64, len(baseWeights)+1)
	if ok {
		for c, w := range baseWeights {
			weights[c] = w
		}
		weights[Novelty] = weightNovelty
	} else {
		// Renormalize so the four local weights sum to exactly 1.
		localTotal := weightClarity + weightSpecificity + weightContext + weightCreativity
		for c, w := range baseWeights {
			weights[c] = w / localTotal
		}
	}

	var weightedSum float64
	for c, w := range weights {
		if c == Novelty {
			weightedSum += res.NoveltyScore * w
			continue
		}
		weightedSum += local[c] * w
	}

	minScore := scores.Min()
	if ok && res.NoveltyScore < minScore {
		minScore = res.NoveltyScore
	}

	elo := float64(eloBase) + (weightedSum-0.5)*float64(eloRange)
	if minScore > synergyThreshold {
		elo += synergyBonus // well-rounded prompt
	}
	if minScore > exceptionalThreshold {
		elo += synergyBonus // exceptional across the board
	}
	r := int(math.Round(math.Max(eloMin, math.Min(eloMax, elo))))

	contributions := make(map[Criterion]Contribution, len(weights)+1)
	for c, w := range weights {
		if c == Novelty {
			continue
		}
		contributions[c] = Contribution{Score: local[c], Weight: w, Available: true}
	}
	if ok {
		contributions[Novelty] = Contribution{Score: res.NoveltyScore, Weight: weights[Novelty], Available: true}
	} else {
		contributions[Novelty] = Contribution{Available: false}
	}

	return Summary{
		Rating:            r,
		Tier:              TierFor(r),
		Contributions:     contributions,
		NoveltyAvailable:  ok,
		NoveltyPercentile: res.Percentile,
		Suggestion:        suggestionFor(scores),
	}
}
