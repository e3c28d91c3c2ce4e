package rating

import (
	"fmt"
	"strings"
)

// Badge renders the summary as the slot-machine style text block shown by
// the prompt-submit hook.
func (s Summary) Badge() string {
	tier, tierEmoji := tierLookup(s.Rating)

	var b strings.Builder
	b.WriteString("\U0001F3B0 ━━━━━━━━━━━━━━━━━━━━ \U0001F3B0\n")
	fmt.Fprintf(&b, "   %s %d • %s %s\n", tierEmoji, s.Rating, tier, tierEmoji)

	if s.NoveltyAvailable {
		label, noveltyEmoji := noveltyLookup(s.NoveltyPercentile)
		if s.NoveltyPercentile >= 85 {
			fmt.Fprintf(&b, "   %s TOP %d%% • %s %s\n", noveltyEmoji, 100-int(s.NoveltyPercentile), label, noveltyEmoji)
		} else {
			fmt.Fprintf(&b, "   %s Novelty: %s\n", noveltyEmoji, label)
		}
	}

	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━")
	return b.String()
}
