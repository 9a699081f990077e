package selector

import (
	"fmt"
	"strings"
	"time"

	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/intent"
)

// RecencyWindow bounds how old a state-changing entry may be and still serve
// as context for a general command.
const RecencyWindow = 10 * time.Minute

// maxContextEntries caps how much history any branch hands to the model.
const maxContextEntries = 2

// Select picks the minimal relevant context for a command. History is
// expected newest first. The branches are exclusive:
//
//   - similarity requests see only a synthetic entry rebuilt from the dialog
//     state's last action, never the full history;
//   - contextual references see the most recent entries that carried
//     alternatives;
//   - general commands see recent state-changing entries only.
func Select(command string, history []conversation.Entry, state *conversation.DialogState, now time.Time) []conversation.Entry {
	switch Classify(command) {
	case KindSimilarity:
		if state == nil || state.LastAction == nil {
			return nil
		}
		return []conversation.Entry{syntheticEntry(state.LastAction)}

	case KindReference:
		var out []conversation.Entry
		for _, e := range history {
			if len(intent.AlternativesOf(e.Interpretation)) == 0 {
				continue
			}
			out = append(out, e)
			if len(out) == maxContextEntries {
				break
			}
		}
		return out

	default:
		limit := maxContextEntries
		if immediateReferent.MatchString(strings.ToLower(command)) {
			limit = 1
		}

		cutoff := now.Add(-RecencyWindow).UnixMilli()
		var out []conversation.Entry
		for _, e := range history {
			if e.Interpretation == nil || !intent.IsDestructive(e.Interpretation.Name()) {
				continue
			}
			if e.Timestamp < cutoff {
				continue
			}
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
		return out
	}
}

// syntheticEntry rebuilds a history-shaped entry from the last action so a
// similarity request is grounded in exactly the most recent play/queue.
func syntheticEntry(la *conversation.LastAction) conversation.Entry {
	return conversation.Entry{
		Command:        describeAction(la),
		Interpretation: rebuildIntent(la),
		Timestamp:      la.Timestamp,
	}
}

func describeAction(la *conversation.LastAction) string {
	subject := la.Query
	if la.Artist != "" && la.Track != "" {
		subject = la.Artist + " - " + la.Track
	}
	return fmt.Sprintf("%s %s", la.Type, subject)
}

func rebuildIntent(la *conversation.LastAction) intent.Intent {
	meta := intent.Meta{Intent: la.Intent, Confidence: 1, Reasoning: "rebuilt from last action"}
	switch la.Intent {
	case intent.PlayPlaylist, intent.QueuePlaylist:
		return intent.PlaylistIntent{Meta: meta, Query: la.Query}
	default:
		return intent.TrackIntent{
			Meta:         meta,
			Artist:       la.Artist,
			Track:        la.Track,
			Album:        la.Album,
			Query:        la.Query,
			Alternatives: la.Alternatives,
		}
	}
}

// FormatContext renders selected entries into the context block handed to
// the model, newest first.
func FormatContext(entries []conversation.Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %q -> %s", e.Command, e.Interpretation.Name())
		if t, ok := e.Interpretation.(intent.TrackIntent); ok {
			if t.Artist != "" && t.Track != "" {
				fmt.Fprintf(&b, " (%s - %s)", t.Artist, t.Track)
			} else if t.Query != "" {
				fmt.Fprintf(&b, " (%s)", t.Query)
			}
			if len(t.Alternatives) > 0 {
				alts := make([]string, 0, len(t.Alternatives))
				for _, a := range t.Alternatives {
					alts = append(alts, a.Text())
				}
				fmt.Fprintf(&b, " alternatives: %s", strings.Join(alts, "; "))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
