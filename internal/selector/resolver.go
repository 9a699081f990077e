package selector

import (
	"regexp"
	"strings"

	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/intent"
)

// resolvedConfidence is assigned to a reference resolved without a model
// call; high enough to clear the confirmation gate.
const resolvedConfidence = 0.9

// leadingStopwords are acknowledgement/action words stripped from the front
// of a reference command before matching.
var leadingStopwords = map[string]bool{
	"no": true, "yes": true, "yeah": true, "nah": true, "nope": true,
	"not": true, "actually": true, "play": true, "queue": true, "try": true,
	"the": true, "that": true, "wait": true, "ok": true, "okay": true,
	"hmm": true, "um": true, "what": true, "about": true,
}

// trailingStopwords are stripped from the end ("...the taylor swift one").
var trailingStopwords = map[string]bool{
	"one": true, "version": true, "instead": true, "please": true,
}

// termSynonyms is the small allowance for spelling variants between the
// user's words and the stored alternative text.
var termSynonyms = map[string][]string{
	"ft":        {"feat", "featuring"},
	"feat":      {"ft", "featuring"},
	"featuring": {"ft", "feat"},
	"acoustic":  {"unplugged"},
	"remix":     {"version", "mix"},
}

var nonWord = regexp.MustCompile(`[^a-z0-9 ]+`)

// ResolveReference matches a pronoun-style command against alternatives
// offered in prior turns, newest first. On the first alternative whose text
// contains every search term it returns a play intent; ok is false when no
// candidate matches, and the caller falls back to re-querying the model.
func ResolveReference(command string, history []conversation.Entry) (intent.Intent, bool) {
	terms := searchTerms(command)
	if len(terms) == 0 {
		return nil, false
	}

	for _, e := range history {
		for _, alt := range intent.AlternativesOf(e.Interpretation) {
			text := strings.ToLower(alt.Text())
			if text == "" || !matchesAll(text, terms) {
				continue
			}
			return intentFromAlternative(alt), true
		}
	}
	return nil, false
}

// searchTerms strips leading acknowledgement/action words and trailing
// one/version tokens, leaving the words that identify the alternative.
func searchTerms(command string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(command), " ")
	tokens := strings.Fields(cleaned)

	for len(tokens) > 0 && leadingStopwords[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && trailingStopwords[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func matchesAll(text string, terms []string) bool {
	for _, term := range terms {
		if !matchesTerm(text, term) {
			return false
		}
	}
	return true
}

func matchesTerm(text, term string) bool {
	if strings.Contains(text, term) {
		return true
	}
	for _, syn := range termSynonyms[term] {
		if strings.Contains(text, syn) {
			return true
		}
	}
	return false
}

func intentFromAlternative(alt intent.Alternative) intent.Intent {
	meta := intent.Meta{
		Intent:     intent.PlaySpecificSong,
		Confidence: resolvedConfidence,
		Reasoning:  "matched an alternative offered in a previous turn",
	}

	if alt.Suggestion != nil {
		if alt.Suggestion.Intent == intent.PlaySpecificSong || alt.Suggestion.Intent == intent.QueueSpecificSong {
			meta.Intent = alt.Suggestion.Intent
		}
		return intent.TrackIntent{
			Meta:          meta,
			Query:         alt.Suggestion.Query,
			EnhancedQuery: alt.Suggestion.EnhancedQuery,
			IsAIDiscovery: alt.Suggestion.IsAIDiscovery,
			AIReasoning:   alt.Suggestion.AIReasoning,
		}
	}

	if artist, track, ok := intent.ParseDisplay(alt.Display); ok {
		return intent.TrackIntent{Meta: meta, Artist: artist, Track: track}
	}
	return intent.TrackIntent{Meta: meta, Query: alt.Display}
}
