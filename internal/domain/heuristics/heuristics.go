// Package heuristics computes rule-based quality sub-scores for prompt text.
//
// Each criterion is a pure function of the input: no I/O, no randomness, and
// no dependency on the other criteria. Signals only ever add to (or, for the
// explicit penalty patterns, subtract from) a fixed base, so adding a matching
// token can never decrease the criterion it targets.
package heuristics

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Base scores and clamping bounds per criterion.
const (
	clarityBase     = 0.5
	specificityBase = 0.3
	contextBase     = 0.3
	creativityBase  = 0.4

	signalBonus      = 0.1
	smallSignalBonus = 0.05
	pathBonus        = 0.15
	codeBonus        = 0.15
	errorTextBonus   = 0.15
	commonPenalty    = 0.05

	longPromptWords  = 50
	shortPromptWords = 20
)

// Scores holds the four locally computed criteria, each in [0,1].
type Scores struct {
	Clarity     float64 `json:"clarity"`
	Specificity float64 `json:"specificity"`
	Context     float64 `json:"context"`
	Creativity  float64 `json:"creativity"`
}

// Min returns the lowest of the four sub-scores.
func (s Scores) Min() float64 {
	min := s.Clarity
	for _, v := range []float64{s.Specificity, s.Context, s.Creativity} {
		if v < min {
			min = v
		}
	}
	return min
}

// Clarity signals.
var (
	reClearVerbs = regexp.MustCompile(`(?i)\b(create|build|write|implement|add|remove|fix|update|refactor|test|debug|explain|analyze|compare|list|show|find|search|generate|convert|parse|validate|check)\b`)
	reIntent     = regexp.MustCompile(`(?i)\b(how|what|why|where|when|which|can you|could you|please)\b`)
	reVagueWords = regexp.MustCompile(`(?i)\b(something|somehow|maybe|probably|sort of|kind of|stuff|things)\b`)
	// Bare demonstratives with no noun attached read as unclear references.
	reBarePronoun = regexp.MustCompile(`(?i)\b(it|this|that)\s*([.!?,;:]|$)`)
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	reFormatting  = regexp.MustCompile("```|`[^`]+`|\n[-*][ \t]|\n\\d+\\.")
)

// Specificity signals.
var (
	rePathLike    = regexp.MustCompile(`[\w/]+\.\w{1,5}\b|[\w/]+/[\w/]+`)
	reIdentifier  = regexp.MustCompile(`\b[a-z]+[A-Z]\w*|[A-Z][a-z]+[A-Z]\w*|\b\w+_\w+\b`)
	reInlineCode  = regexp.MustCompile("`[^`]+`")
	reTechTerms   = regexp.MustCompile(`(?i)\b(function|class|method|variable|parameter|argument|return|type|interface|module|package|import|export|async|await|promise|callback|API|endpoint|database|query|schema|migration)\b`)
	reFailureTerm = regexp.MustCompile(`(?i)\b(error|exception|bug|issue|crash|undefined|null|NaN|stack trace)\b`)
	reTestingTerm = regexp.MustCompile(`(?i)\b(test|unit test|integration|mock|stub|fixture|assertion)\b`)
	reNumber      = regexp.MustCompile(`\b\d+\b`)
)

// Context signals.
var (
	reBackground = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(currently|right now|at the moment|existing|current)\b`),
		regexp.MustCompile(`(?i)\b(I have|I'm using|I'm working on|my project|our codebase)\b`),
		regexp.MustCompile(`(?i)\b(because|since|as|due to|the reason)\b`),
		regexp.MustCompile(`(?i)\b(want to|need to|trying to|goal is|objective is)\b`),
	}
	reConstraints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(must|should|cannot|shouldn't|don't want|avoid|without|only|prefer)\b`),
		regexp.MustCompile(`(?i)\b(compatible|support|work with|integrate)\b`),
		regexp.MustCompile(`(?i)\b(performance|security|scalability|maintainability)\b`),
	}
	reEnvironment = regexp.MustCompile(`(?i)\b(version|v\d|node|python|npm|pip|docker|OS|linux|mac|windows)\b`)
	reErrorText   = regexp.MustCompile(`(?i)error:|exception|traceback|at line \d+`)
)

// Creativity signals.
var (
	reExploratory = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(explore|experiment|try|investigate|consider|alternative|different approach|other ways)\b`),
		regexp.MustCompile(`(?i)\b(what if|could we|is there a way|would it be possible)\b`),
		regexp.MustCompile(`(?i)\b(optimize|improve|enhance|better|best practice|elegant|clean)\b`),
	}
	reCombination = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(combine|merge|integrate|connect|bridge|link)\b`),
		regexp.MustCompile(`(?i)\b(and|with|plus|alongside|together)\b.*\b(and|with|plus)\b`),
	}
	reCreativeWords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(creative|novel|unique|innovative|unconventional|clever)\b`),
		regexp.MustCompile(`(?i)\b(design|architect|pattern|strategy|approach)\b`),
	}
	reBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(fix|help|how do I|what is)\s`),
		regexp.MustCompile(`(?i)\b(hello world|todo app|CRUD|basic|simple example)\b`),
	}
)

// Score computes all four criteria for the given prompt text.
// It returns ErrInvalidInput only for non-UTF-8 input; the empty string is a
// valid prompt and yields deterministic base scores.
func Score(text string) (Scores, error) {
	if !utf8.ValidString(text) {
		return Scores{}, ErrInvalidInput
	}
	return Scores{
		Clarity:     Clarity(text),
		Specificity: Specificity(text),
		Context:     Context(text),
		Creativity:  Creativity(text),
	}, nil
}

// Clarity measures clear sentence structure, actionable verbs and the absence
// of vague language.
func Clarity(text string) float64 {
	score := clarityBase

	if reClearVerbs.MatchString(text) {
		score += signalBonus
	}
	if reIntent.MatchString(text) {
		score += signalBonus
	}
	if reVagueWords.MatchString(text) {
		score -= signalBonus
	}
	if reBarePronoun.MatchString(text) {
		score -= signalBonus
	}
	if countSentences(text) >= 2 {
		score += signalBonus
	}
	if reFormatting.MatchString(text) {
		score += signalBonus
	}

	return clamp01(score)
}

// Specificity measures concrete technical detail: file names, identifiers,
// code spans, terminology and quantities.
func Specificity(text string) float64 {
	score := specificityBase

	if rePathLike.MatchString(text) {
		score += pathBonus
	}
	if reIdentifier.MatchString(text) {
		score += signalBonus
	}
	if strings.Contains(text, "```") || reInlineCode.MatchString(text) {
		score += codeBonus
	}
	for _, re := range []*regexp.Regexp{reTechTerms, reFailureTerm, reTestingTerm} {
		if re.MatchString(text) {
			score += smallSignalBonus
		}
	}
	if reNumber.MatchString(text) {
		score += signalBonus
	}
	switch words := len(strings.Fields(text)); {
	case words > longPromptWords:
		score += signalBonus
	case words > shortPromptWords:
		score += smallSignalBonus
	}

	return clamp01(score)
}

// Context measures background information, stated constraints and environment
// or failure detail.
func Context(text string) float64 {
	score := contextBase

	for _, re := range reBackground {
		if re.MatchString(text) {
			score += signalBonus
		}
	}
	for _, re := range reConstraints {
		if re.MatchString(text) {
			score += signalBonus
		}
	}
	if reEnvironment.MatchString(text) {
		score += signalBonus
	}
	if reErrorText.MatchString(text) {
		score += errorTextBonus
	}

	return clamp01(score)
}

// Creativity measures exploratory framing and non-boilerplate requests.
func Creativity(text string) float64 {
	score := creativityBase

	for _, re := range reExploratory {
		if re.MatchString(text) {
			score += signalBonus
		}
	}
	for _, re := range reCombination {
		if re.MatchString(text) {
			score += signalBonus
		}
	}
	for _, re := range reCreativeWords {
		if re.MatchString(text) {
			score += signalBonus
		}
	}
	for _, re := range reBoilerplate {
		if re.MatchString(text) {
			score -= commonPenalty
		}
	}

	return clamp01(score)
}

func countSentences(text string) int {
	n := 0
	for _, part := range reSentenceEnd.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
