// Package intent defines the canonical shape every model interpretation is
// normalized into before any business logic runs, plus the normalize →
// validate → repair pipeline that gets heterogeneous provider output there.
package intent

import (
	"encoding/json"
	"fmt"
)

// Intent name constants, one per supported command.
const (
	PlaySpecificSong  = "play_specific_song"
	QueueSpecificSong = "queue_specific_song"
	QueueMultipleSong = "queue_multiple_songs"
	PlayPlaylist      = "play_playlist"
	QueuePlaylist     = "queue_playlist"

	Pause      = "pause"
	Resume     = "resume"
	Skip       = "skip"
	Previous   = "previous"
	Next       = "next"
	Back       = "back"
	SetVolume  = "set_volume"
	SetShuffle = "set_shuffle"
	SetRepeat  = "set_repeat"
	ClearQueue = "clear_queue"

	GetCurrentTrack   = "get_current_track"
	GetDevices        = "get_devices"
	GetPlaylists      = "get_playlists"
	GetRecentlyPlayed = "get_recently_played"
	Search            = "search"
	GetPlaybackInfo   = "get_playback_info"

	Chat             = "chat"
	AskQuestion      = "ask_question"
	ExplainReasoning = "explain_reasoning"
	Unknown          = "unknown"

	ClarificationMode = "clarification_mode"
)

// Meta carries the fields shared by every variant of the union.
type Meta struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (m Meta) Name() string          { return m.Intent }
func (m Meta) ConfidenceOf() float64 { return m.Confidence }

// Intent is the canonical discriminated union keyed by the intent name.
// Exactly one variant exists per command family; the interface is sealed.
type Intent interface {
	Name() string
	ConfidenceOf() float64
	variant()
}

// Modifiers narrows a track request. Exclude is never nil after validation.
type Modifiers struct {
	Exclude  []string `json:"exclude"`
	Obscure  bool     `json:"obscure,omitempty"`
	Version  string   `json:"version,omitempty"`
	MoodHint string   `json:"mood,omitempty"`
}

// TrackIntent covers play_specific_song and queue_specific_song. It needs
// either a structured artist+track pair or a free-text query.
type TrackIntent struct {
	Meta
	Artist        string        `json:"artist,omitempty"`
	Track         string        `json:"track,omitempty"`
	Album         string        `json:"album,omitempty"`
	Query         string        `json:"query,omitempty"`
	EnhancedQuery string        `json:"enhancedQuery,omitempty"`
	IsAIDiscovery bool          `json:"isAIDiscovery,omitempty"`
	AIReasoning   string        `json:"aiReasoning,omitempty"`
	Modifiers     *Modifiers    `json:"modifiers,omitempty"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
}

// SongRef is one element of a queue_multiple_songs request.
type SongRef struct {
	Artist string `json:"artist,omitempty"`
	Track  string `json:"track,omitempty"`
	Album  string `json:"album,omitempty"`
	Query  string `json:"query,omitempty"`
}

// MultiTrackIntent covers queue_multiple_songs.
type MultiTrackIntent struct {
	Meta
	Songs  []SongRef `json:"songs"`
	Theme  string    `json:"theme,omitempty"`
	Source string    `json:"source,omitempty"`
}

// PlaylistIntent covers play_playlist and queue_playlist.
type PlaylistIntent struct {
	Meta
	Query    string `json:"query,omitempty"`
	Playlist string `json:"name,omitempty"`
}

// ControlIntent covers the transport commands. VolumeLevel is set only for
// set_volume, Enabled only for set_shuffle/set_repeat.
type ControlIntent struct {
	Meta
	VolumeLevel *int  `json:"volume_level,omitempty"`
	Enabled     *bool `json:"enabled,omitempty"`
}

// InfoIntent covers the read-only playback queries.
type InfoIntent struct {
	Meta
	Query string `json:"query,omitempty"`
}

// ChatIntent covers the purely conversational commands.
type ChatIntent struct {
	Meta
	Message string `json:"message,omitempty"`
}

// ClarificationOption is one of the 4–5 directions offered back to the user.
type ClarificationOption struct {
	Label       string `json:"label"`
	Query       string `json:"query,omitempty"`
	Description string `json:"description,omitempty"`
}

// ClarificationIntent covers clarification_mode.
type ClarificationIntent struct {
	Meta
	ResponseMessage string                `json:"responseMessage"`
	CurrentContext  string                `json:"currentContext"`
	Options         []ClarificationOption `json:"options"`
}

func (TrackIntent) variant()         {}
func (MultiTrackIntent) variant()    {}
func (PlaylistIntent) variant()      {}
func (ControlIntent) variant()       {}
func (InfoIntent) variant()          {}
func (ChatIntent) variant()          {}
func (ClarificationIntent) variant() {}

// familyOf maps every known intent name to the variant that represents it.
var familyOf = map[string]func() Intent{
	PlaySpecificSong:  func() Intent { return TrackIntent{} },
	QueueSpecificSong: func() Intent { return TrackIntent{} },
	QueueMultipleSong: func() Intent { return MultiTrackIntent{} },
	PlayPlaylist:      func() Intent { return PlaylistIntent{} },
	QueuePlaylist:     func() Intent { return PlaylistIntent{} },

	Pause:      func() Intent { return ControlIntent{} },
	Resume:     func() Intent { return ControlIntent{} },
	Skip:       func() Intent { return ControlIntent{} },
	Previous:   func() Intent { return ControlIntent{} },
	Next:       func() Intent { return ControlIntent{} },
	Back:       func() Intent { return ControlIntent{} },
	SetVolume:  func() Intent { return ControlIntent{} },
	SetShuffle: func() Intent { return ControlIntent{} },
	SetRepeat:  func() Intent { return ControlIntent{} },
	ClearQueue: func() Intent { return ControlIntent{} },

	GetCurrentTrack:   func() Intent { return InfoIntent{} },
	GetDevices:        func() Intent { return InfoIntent{} },
	GetPlaylists:      func() Intent { return InfoIntent{} },
	GetRecentlyPlayed: func() Intent { return InfoIntent{} },
	Search:            func() Intent { return InfoIntent{} },
	GetPlaybackInfo:   func() Intent { return InfoIntent{} },

	Chat:             func() Intent { return ChatIntent{} },
	AskQuestion:      func() Intent { return ChatIntent{} },
	ExplainReasoning: func() Intent { return ChatIntent{} },
	Unknown:          func() Intent { return ChatIntent{} },

	ClarificationMode: func() Intent { return ClarificationIntent{} },
}

// Known reports whether name is a currently supported intent.
func Known(name string) bool {
	_, ok := familyOf[name]
	return ok
}

// IsConversational reports whether name belongs to the chat family.
func IsConversational(name string) bool {
	switch name {
	case Chat, AskQuestion, ExplainReasoning, Unknown:
		return true
	}
	return false
}

// UnmarshalIntent decodes a canonical (already validated) JSON document into
// its variant by probing the intent key. Used when reading stored entries
// back; untrusted provider output goes through Resolve instead.
func UnmarshalIntent(data []byte) (Intent, error) {
	var probe struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("probing intent key: %w", err)
	}

	ctor, ok := familyOf[probe.Intent]
	if !ok {
		return nil, fmt.Errorf("unknown intent %q", probe.Intent)
	}

	switch ctor().(type) {
	case TrackIntent:
		var v TrackIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case MultiTrackIntent:
		var v MultiTrackIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case PlaylistIntent:
		var v PlaylistIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case ControlIntent:
		var v ControlIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case InfoIntent:
		var v InfoIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case ChatIntent:
		var v ChatIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		var v ClarificationIntent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// AlternativesOf returns the alternatives carried by an intent, if any.
func AlternativesOf(i Intent) []Alternative {
	if t, ok := i.(TrackIntent); ok {
		return t.Alternatives
	}
	return nil
}
