package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validation error codes. These are the machine-readable taxonomy surfaced
// to the calling layer; the messages are safe to show to users.
const (
	CodeNotObject            = "not_object"
	CodeUnknownIntent        = "unknown_intent"
	CodeMissingArtist        = "missing_artist"
	CodeEmptyArtist          = "empty_artist"
	CodeMissingTrack         = "missing_track"
	CodeEmptyTrack           = "empty_track"
	CodeEmptySongs           = "empty_songs"
	CodeMissingQuery         = "missing_query"
	CodeInvalidVolume        = "invalid_volume"
	CodeMissingClarification = "missing_clarification"
	CodeMissingConfidence    = "missing_confidence"
	CodeInvalidConfidence    = "invalid_confidence"
	CodeMissingReasoning     = "missing_reasoning"
)

// ValidationError describes why provider output failed schema validation.
// Suggestion, when set, names a remediation the caller can surface.
type ValidationError struct {
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func verr(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// deprecatedIntents maps retired intent names to their current equivalents.
var deprecatedIntents = map[string]string{
	"search_and_play":  PlaySpecificSong,
	"search_and_queue": QueueSpecificSong,
	"queue_add":        QueueSpecificSong,
}

// Validate parses a normalized value against the canonical union. It returns
// the decoded variant or the first failure in the fixed taxonomy.
func Validate(v any) (Intent, *ValidationError) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, verr(CodeNotObject, "", "interpretation must be a JSON object")
	}

	name, _ := m["intent"].(string)
	if !Known(name) {
		e := verr(CodeUnknownIntent, "intent", fmt.Sprintf("unsupported intent %q", name))
		if replacement, deprecated := deprecatedIntents[name]; deprecated {
			e.Message = fmt.Sprintf("intent %q is deprecated", name)
			e.Suggestion = fmt.Sprintf("use %q instead", replacement)
		}
		return nil, e
	}

	if err := validateMeta(m); err != nil {
		return nil, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, verr(CodeNotObject, "", "interpretation is not serializable")
	}

	switch familyOf[name]().(type) {
	case TrackIntent:
		return validateTrack(m, data)
	case MultiTrackIntent:
		return validateMultiTrack(m, data)
	case PlaylistIntent:
		return validatePlaylist(data)
	case ControlIntent:
		return validateControl(name, data)
	case InfoIntent:
		var out InfoIntent
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, verr(CodeNotObject, "", "malformed informational intent")
		}
		return out, nil
	case ChatIntent:
		var out ChatIntent
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, verr(CodeNotObject, "", "malformed conversational intent")
		}
		return out, nil
	default:
		return validateClarification(data)
	}
}

func validateMeta(m map[string]any) *ValidationError {
	conf, ok := m["confidence"].(float64)
	if !ok {
		return verr(CodeMissingConfidence, "confidence", "confidence is required")
	}
	if conf < 0 || conf > 1 {
		return verr(CodeInvalidConfidence, "confidence", fmt.Sprintf("confidence %v is outside [0,1]", conf))
	}

	reasoning, _ := m["reasoning"].(string)
	if strings.TrimSpace(reasoning) == "" {
		return verr(CodeMissingReasoning, "reasoning", "reasoning must be a non-empty string")
	}
	return nil
}

func validateTrack(m map[string]any, data []byte) (Intent, *ValidationError) {
	// Empty identity fields are hard failures, never defaulted.
	if raw, ok := m["artist"]; ok {
		if s, _ := raw.(string); strings.TrimSpace(s) == "" {
			return nil, verr(CodeEmptyArtist, "artist", "artist cannot be empty")
		}
	}
	if raw, ok := m["track"]; ok {
		if s, _ := raw.(string); strings.TrimSpace(s) == "" {
			return nil, verr(CodeEmptyTrack, "track", "track cannot be empty")
		}
	}

	var out TrackIntent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, verr(CodeNotObject, "", "malformed track intent")
	}

	if out.Query == "" {
		if out.Artist == "" {
			return nil, verr(CodeMissingArtist, "artist", "either query or artist and track is required")
		}
		if out.Track == "" {
			return nil, verr(CodeMissingTrack, "track", "either query or artist and track is required")
		}
	}

	if out.Modifiers == nil {
		out.Modifiers = &Modifiers{}
	}
	if out.Modifiers.Exclude == nil {
		out.Modifiers.Exclude = []string{}
	}
	out.Alternatives = dropZeroAlternatives(out.Alternatives)
	return out, nil
}

func validateMultiTrack(m map[string]any, data []byte) (Intent, *ValidationError) {
	var out MultiTrackIntent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, verr(CodeNotObject, "", "malformed multi-track intent")
	}
	if len(out.Songs) == 0 {
		return nil, verr(CodeEmptySongs, "songs", "songs must be a non-empty array")
	}
	return out, nil
}

func validatePlaylist(data []byte) (Intent, *ValidationError) {
	var out PlaylistIntent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, verr(CodeNotObject, "", "malformed playlist intent")
	}
	if strings.TrimSpace(out.Query) == "" && strings.TrimSpace(out.Playlist) == "" {
		return nil, verr(CodeMissingQuery, "query", "a playlist query or name is required")
	}
	return out, nil
}

func validateControl(name string, data []byte) (Intent, *ValidationError) {
	var out ControlIntent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, verr(CodeNotObject, "", "malformed transport intent")
	}
	if name == SetVolume {
		if out.VolumeLevel == nil {
			return nil, verr(CodeInvalidVolume, "volume_level", "volume_level is required for set_volume")
		}
		if *out.VolumeLevel < 0 || *out.VolumeLevel > 100 {
			return nil, verr(CodeInvalidVolume, "volume_level", fmt.Sprintf("volume_level %d is outside 0–100", *out.VolumeLevel))
		}
	}
	return out, nil
}

func validateClarification(data []byte) (Intent, *ValidationError) {
	var out ClarificationIntent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, verr(CodeNotObject, "", "malformed clarification intent")
	}
	if strings.TrimSpace(out.ResponseMessage) == "" {
		return nil, verr(CodeMissingClarification, "responseMessage", "responseMessage is required in clarification_mode")
	}
	if strings.TrimSpace(out.CurrentContext) == "" {
		return nil, verr(CodeMissingClarification, "currentContext", "currentContext is required in clarification_mode")
	}
	if len(out.Options) < 4 || len(out.Options) > 5 {
		return nil, verr(CodeMissingClarification, "options", fmt.Sprintf("options must contain 4–5 entries, got %d", len(out.Options)))
	}
	return out, nil
}

func dropZeroAlternatives(alts []Alternative) []Alternative {
	out := alts[:0]
	for _, a := range alts {
		if !a.IsZero() {
			out = append(out, a)
		}
	}
	return out
}
