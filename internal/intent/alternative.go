package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suggestion is the structured form of an alternative: a richer follow-up
// the model proposed alongside its primary interpretation.
type Suggestion struct {
	Intent        string `json:"intent,omitempty"`
	Query         string `json:"query,omitempty"`
	Theme         string `json:"theme,omitempty"`
	EnhancedQuery string `json:"enhancedQuery,omitempty"`
	IsAIDiscovery bool   `json:"isAIDiscovery,omitempty"`
	AIReasoning   string `json:"aiReasoning,omitempty"`
}

// Alternative is a two-variant union: either a bare display string
// ("Artist - Track") or a structured Suggestion. Exactly one side is set.
type Alternative struct {
	Display    string
	Suggestion *Suggestion
}

// Alt wraps a bare display string.
func Alt(display string) Alternative {
	return Alternative{Display: display}
}

// AltSuggestion wraps a structured suggestion.
func AltSuggestion(s Suggestion) Alternative {
	return Alternative{Suggestion: &s}
}

// IsZero reports whether neither variant is populated.
func (a Alternative) IsZero() bool {
	return a.Display == "" && a.Suggestion == nil
}

// Text returns the matchable text of the alternative: the display string for
// the bare form, or the best available query text for the structured form.
func (a Alternative) Text() string {
	if a.Suggestion == nil {
		return a.Display
	}
	if a.Suggestion.EnhancedQuery != "" {
		return a.Suggestion.EnhancedQuery
	}
	if a.Suggestion.Query != "" {
		return a.Suggestion.Query
	}
	return a.Suggestion.Theme
}

func (a Alternative) MarshalJSON() ([]byte, error) {
	if a.Suggestion != nil {
		return json.Marshal(a.Suggestion)
	}
	return json.Marshal(a.Display)
}

func (a *Alternative) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &a.Display)
	}
	var s Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding alternative: %w", err)
	}
	a.Suggestion = &s
	return nil
}

// ParseDisplay splits an "Artist - Track" display string. ok is false when
// the string does not carry a separator.
func ParseDisplay(display string) (artist, track string, ok bool) {
	idx := strings.Index(display, " - ")
	if idx < 0 {
		return "", "", false
	}
	artist = strings.TrimSpace(display[:idx])
	track = strings.TrimSpace(display[idx+3:])
	if artist == "" || track == "" {
		return "", "", false
	}
	return artist, track, true
}
