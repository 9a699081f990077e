package conversation

import (
	"strings"
	"unicode"

	"github.com/dblumenau/djforge-go/internal/intent"
)

// promptMarkers are sequences a downstream prompt template could interpret
// as control syntax. They are stripped before anything is persisted.
var promptMarkers = []string{"{{", "}}", "<|", "|>"}

// CleanText strips control characters and prompt template markers, then
// truncates to max runes. max <= 0 means no truncation.
func CleanText(s string, max int) string {
	for _, m := range promptMarkers {
		s = strings.ReplaceAll(s, m, "")
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)

	if max > 0 {
		runes := []rune(s)
		if len(runes) > max {
			s = string(runes[:max])
		}
	}
	return s
}

// sanitizeEntry caps and cleans an entry so an oversized or malformed one
// cannot corrupt the bounded history.
func sanitizeEntry(e Entry, cfg Config) Entry {
	e.Command = CleanText(e.Command, cfg.MaxFieldLen)
	e.Interpretation = sanitizeIntent(e.Interpretation, cfg.MaxFieldLen)
	if cfg.MaxResponseSz > 0 && len(e.Response) > cfg.MaxResponseSz {
		e.Response = nil
	}
	return e
}

// sanitizeIntent cleans every model-authored string on the interpretation.
// History entries are rendered back into prompts, so markers surviving here
// would reach the model on the next turn.
func sanitizeIntent(in intent.Intent, max int) intent.Intent {
	clean := func(s string) string { return CleanText(s, max) }

	switch v := in.(type) {
	case intent.TrackIntent:
		v.Reasoning = clean(v.Reasoning)
		v.Artist = clean(v.Artist)
		v.Track = clean(v.Track)
		v.Album = clean(v.Album)
		v.Query = clean(v.Query)
		v.EnhancedQuery = clean(v.EnhancedQuery)
		v.AIReasoning = clean(v.AIReasoning)
		if v.Modifiers != nil {
			m := *v.Modifiers
			m.Version = clean(m.Version)
			m.MoodHint = clean(m.MoodHint)
			m.Exclude = append([]string(nil), m.Exclude...)
			for i := range m.Exclude {
				m.Exclude[i] = clean(m.Exclude[i])
			}
			v.Modifiers = &m
		}
		v.Alternatives = sanitizeAlternatives(v.Alternatives, clean)
		return v
	case intent.MultiTrackIntent:
		v.Reasoning = clean(v.Reasoning)
		v.Theme = clean(v.Theme)
		v.Source = clean(v.Source)
		v.Songs = append([]intent.SongRef(nil), v.Songs...)
		for i := range v.Songs {
			v.Songs[i].Artist = clean(v.Songs[i].Artist)
			v.Songs[i].Track = clean(v.Songs[i].Track)
			v.Songs[i].Album = clean(v.Songs[i].Album)
			v.Songs[i].Query = clean(v.Songs[i].Query)
		}
		return v
	case intent.PlaylistIntent:
		v.Reasoning = clean(v.Reasoning)
		v.Query = clean(v.Query)
		v.Playlist = clean(v.Playlist)
		return v
	case intent.ControlIntent:
		v.Reasoning = clean(v.Reasoning)
		return v
	case intent.InfoIntent:
		v.Reasoning = clean(v.Reasoning)
		v.Query = clean(v.Query)
		return v
	case intent.ChatIntent:
		v.Reasoning = clean(v.Reasoning)
		v.Message = clean(v.Message)
		return v
	case intent.ClarificationIntent:
		v.Reasoning = clean(v.Reasoning)
		v.ResponseMessage = clean(v.ResponseMessage)
		v.CurrentContext = clean(v.CurrentContext)
		v.Options = append([]intent.ClarificationOption(nil), v.Options...)
		for i := range v.Options {
			v.Options[i].Label = clean(v.Options[i].Label)
			v.Options[i].Query = clean(v.Options[i].Query)
			v.Options[i].Description = clean(v.Options[i].Description)
		}
		return v
	default:
		return in
	}
}

func sanitizeAlternatives(alts []intent.Alternative, clean func(string) string) []intent.Alternative {
	if len(alts) == 0 {
		return alts
	}
	out := append([]intent.Alternative(nil), alts...)
	for i := range out {
		out[i].Display = clean(out[i].Display)
		if out[i].Suggestion != nil {
			s := *out[i].Suggestion
			s.Query = clean(s.Query)
			s.Theme = clean(s.Theme)
			s.EnhancedQuery = clean(s.EnhancedQuery)
			s.AIReasoning = clean(s.AIReasoning)
			out[i].Suggestion = &s
		}
	}
	return out
}
