package rating

// Tier labels a rating band.
type Tier string

// Rating tiers, ordered from lowest to highest band.
const (
	TierNovice    Tier = "NOVICE"
	TierRising    Tier = "RISING"
	TierSkilled   Tier = "SKILLED"
	TierExpert    Tier = "EXPERT"
	TierMaster    Tier = "MASTER"
	TierLegendary Tier = "LEGENDARY"
)

// tierBand maps a rating lower bound to its tier. Bands are ordered,
// exhaustive and non-overlapping; lookup scans from the highest bound down.
type tierBand struct {
	lowerBound int
	tier       Tier
	emoji      string
}

var tierBands = []tierBand{
	{2200, TierLegendary, "\U0001F3C6"},
	{2000, TierMaster, "⭐"},
	{1800, TierExpert, "\U0001F31F"},
	{1500, TierSkilled, "✨"},
	{1200, TierRising, "\U0001F4C8"},
	{0, TierNovice, "\U0001F4CB"},
}

// TierFor returns the tier for a rating. Total over all ints: ratings below
// the lowest band clamp to NOVICE.
func TierFor(r int) Tier {
	tier, _ := tierLookup(r)
	return tier
}

func tierLookup(r int) (Tier, string) {
	for _, band := range tierBands {
		if r >= band.lowerBound {
			return band.tier, band.emoji
		}
	}
	return TierNovice, tierBands[len(tierBands)-1].emoji
}

// NoveltyLabel names a novelty percentile band for display.
type NoveltyLabel string

// Novelty labels, rarest first.
const (
	NoveltyLegendary NoveltyLabel = "LEGENDARY"
	NoveltyRare      NoveltyLabel = "RARE"
	NoveltyUncommon  NoveltyLabel = "UNCOMMON"
	NoveltyCommon    NoveltyLabel = "COMMON"
	NoveltyFrequent  NoveltyLabel = "FREQUENT"
)

type noveltyBand struct {
	lowerBound float64
	label      NoveltyLabel
	emoji      string
}

var noveltyBands = []noveltyBand{
	{95, NoveltyLegendary, "\U0001F48E"},
	{85, NoveltyRare, "\U0001F31F"},
	{70, NoveltyUncommon, "✨"},
	{30, NoveltyCommon, "\U0001F4CA"},
	{0, NoveltyFrequent, "\U0001F4C8"},
}

// NoveltyLabelFor returns the display label for a novelty percentile.
func NoveltyLabelFor(percentile float64) NoveltyLabel {
	label, _ := noveltyLookup(percentile)
	return label
}

func noveltyLookup(percentile float64) (NoveltyLabel, string) {
	for _, band := range noveltyBands {
		if percentile >= band.lowerBound {
			return band.label, band.emoji
		}
	}
	last := noveltyBands[len(noveltyBands)-1]
	return last.label, last.emoji
}
