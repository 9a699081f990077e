// Package selector classifies incoming commands and picks the minimal
// relevant history slice to hand to the model, keeping unrelated earlier
// topics from leaking into the prompt.
package selector

import (
	"regexp"
	"strings"
)

// Kind is the classification of a command, decided before any context is
// selected. The rules are never combined: exactly one branch applies.
type Kind int

const (
	// KindGeneral is any command not caught by a similarity or reference rule.
	KindGeneral Kind = iota
	// KindSimilarity asks for "more like" the most recent action.
	KindSimilarity
	// KindReference points back at an alternative offered in a prior turn.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindSimilarity:
		return "similarity"
	case KindReference:
		return "reference"
	default:
		return "general"
	}
}

// Rule pairs a pattern with the classification it implies. Rules are matched
// in order against the lowercased command; similarity rules come first.
type Rule struct {
	Kind    Kind
	Pattern *regexp.Regexp
}

// Rules is the ordered classification table. Exported so the individual
// patterns stay testable apart from the selector.
var Rules = []Rule{
	{KindSimilarity, regexp.MustCompile(`\bsimilar\b`)},
	{KindSimilarity, regexp.MustCompile(`\blike (that|this|it)\b`)},
	{KindSimilarity, regexp.MustCompile(`\bmore of the same\b`)},
	{KindSimilarity, regexp.MustCompile(`\bsame (vibe|genre|style|sound|energy)\b`)},
	{KindSimilarity, regexp.MustCompile(`\bmore like\b`)},

	{KindReference, regexp.MustCompile(`^(no|yes|yeah|nah|nope)\b`)},
	{KindReference, regexp.MustCompile(`\bthe \S+.*\bone\b`)},
	{KindReference, regexp.MustCompile(`\bactually\b`)},
	{KindReference, regexp.MustCompile(`\bthe \S+.*\bversion\b`)},
	{KindReference, regexp.MustCompile(`\binstead\s*$`)},
}

// immediateReferent matches commands that point at the single most recent
// action ("play this", "queue that too"). The token also counts as a suffix
// of a longer word, so run-together forms like "playthis" still match.
var immediateReferent = regexp.MustCompile(`(this|that)\b`)

// Classify runs the command through the ordered rule table.
func Classify(command string) Kind {
	c := strings.ToLower(strings.TrimSpace(command))
	for _, r := range Rules {
		if r.Pattern.MatchString(c) {
			return r.Kind
		}
	}
	return KindGeneral
}
