package intent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrackMap() map[string]any {
	return map[string]any{
		"intent":     "play_specific_song",
		"artist":     "Haim",
		"track":      "Gasoline",
		"confidence": 0.92,
		"reasoning":  "user asked for it by name",
	}
}

func TestValidate_TrackWithPair(t *testing.T) {
	got, verr := Validate(validTrackMap())
	require.Nil(t, verr)

	track, ok := got.(TrackIntent)
	require.True(t, ok)
	assert.Equal(t, PlaySpecificSong, track.Name())
	assert.Equal(t, "Haim", track.Artist)
	assert.Equal(t, "Gasoline", track.Track)
	require.NotNil(t, track.Modifiers)
	assert.NotNil(t, track.Modifiers.Exclude)
}

func TestValidate_TrackWithQueryOnly(t *testing.T) {
	m := map[string]any{
		"intent":     "queue_specific_song",
		"query":      "that song from the diner scene",
		"confidence": 0.6,
		"reasoning":  "vague description, free-text search",
	}

	got, verr := Validate(m)
	require.Nil(t, verr)
	assert.Equal(t, QueueSpecificSong, got.Name())
}

func TestValidate_EmptyIdentityFieldsAreHardFailures(t *testing.T) {
	for _, field := range []string{"artist", "track"} {
		t.Run(field, func(t *testing.T) {
			m := validTrackMap()
			m[field] = ""

			_, verr := Validate(m)
			require.NotNil(t, verr)
			assert.Contains(t, verr.Message, "cannot be empty")
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestValidate_TrackMissingIdentity(t *testing.T) {
	m := map[string]any{"intent": "play_specific_song", "confidence": 0.8, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeMissingArtist, verr.Code)
}

func TestValidate_NotObject(t *testing.T) {
	_, verr := Validate("just a string")
	require.NotNil(t, verr)
	assert.Equal(t, CodeNotObject, verr.Code)
}

func TestValidate_UnknownIntent(t *testing.T) {
	m := map[string]any{"intent": "order_pizza", "confidence": 0.9, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeUnknownIntent, verr.Code)
	assert.Empty(t, verr.Suggestion)
}

func TestValidate_DeprecatedIntentSuggestsReplacement(t *testing.T) {
	m := map[string]any{"intent": "search_and_play", "query": "gasoline", "confidence": 0.9, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeUnknownIntent, verr.Code)
	assert.Contains(t, verr.Suggestion, "play_specific_song")
}

func TestValidate_ConfidenceAndReasoning(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]any)
		wantCode string
	}{
		{"missing confidence", func(m map[string]any) { delete(m, "confidence") }, CodeMissingConfidence},
		{"confidence above one", func(m map[string]any) { m["confidence"] = 85.0 }, CodeInvalidConfidence},
		{"negative confidence", func(m map[string]any) { m["confidence"] = -0.1 }, CodeInvalidConfidence},
		{"missing reasoning", func(m map[string]any) { delete(m, "reasoning") }, CodeMissingReasoning},
		{"blank reasoning", func(m map[string]any) { m["reasoning"] = "   " }, CodeMissingReasoning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validTrackMap()
			tt.mutate(m)

			_, verr := Validate(m)
			require.NotNil(t, verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func TestValidate_MultiTrackRequiresSongs(t *testing.T) {
	m := map[string]any{"intent": "queue_multiple_songs", "songs": []any{}, "confidence": 0.8, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeEmptySongs, verr.Code)

	m["songs"] = []any{map[string]any{"artist": "Haim", "track": "Gasoline"}}
	got, verr := Validate(m)
	require.Nil(t, verr)
	multi := got.(MultiTrackIntent)
	assert.Len(t, multi.Songs, 1)
}

func TestValidate_PlaylistRequiresQueryOrName(t *testing.T) {
	m := map[string]any{"intent": "play_playlist", "confidence": 0.8, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeMissingQuery, verr.Code)

	m["name"] = "road trip"
	_, verr = Validate(m)
	assert.Nil(t, verr)
}

func TestValidate_VolumeRange(t *testing.T) {
	for level, wantErr := range map[float64]bool{-1: true, 0: false, 55: false, 100: false, 101: true} {
		m := map[string]any{"intent": "set_volume", "volume_level": level, "confidence": 0.9, "reasoning": "x"}

		_, verr := Validate(m)
		if wantErr {
			require.NotNil(t, verr, "level %v", level)
			assert.Equal(t, CodeInvalidVolume, verr.Code)
		} else {
			assert.Nil(t, verr, "level %v", level)
		}
	}
}

func TestValidate_SetVolumeRequiresLevel(t *testing.T) {
	m := map[string]any{"intent": "set_volume", "confidence": 0.9, "reasoning": "x"}

	_, verr := Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeInvalidVolume, verr.Code)
}

func TestValidate_ClarificationFields(t *testing.T) {
	options := func(n int) []any {
		out := make([]any, n)
		for i := range out {
			out[i] = map[string]any{"label": "option", "query": "q"}
		}
		return out
	}
	base := func() map[string]any {
		return map[string]any{
			"intent":          "clarification_mode",
			"responseMessage": "Which direction?",
			"currentContext":  "user asked for something upbeat",
			"options":         options(4),
			"confidence":      0.9,
			"reasoning":       "ambiguous request",
		}
	}

	got, verr := Validate(base())
	require.Nil(t, verr)
	clar := got.(ClarificationIntent)
	assert.Len(t, clar.Options, 4)

	m := base()
	delete(m, "responseMessage")
	_, verr = Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, CodeMissingClarification, verr.Code)

	m = base()
	m["options"] = options(6)
	_, verr = Validate(m)
	require.NotNil(t, verr)
	assert.Equal(t, "options", verr.Field)
}

func TestValidate_ConversationalAndInfo(t *testing.T) {
	for _, name := range []string{"chat", "ask_question", "explain_reasoning", "unknown", "get_current_track", "search", "pause"} {
		m := map[string]any{"intent": name, "confidence": 0.5, "reasoning": "x"}

		got, verr := Validate(m)
		require.Nil(t, verr, name)
		assert.Equal(t, name, got.Name())
	}
}

func TestUnmarshalIntent_RoundTrip(t *testing.T) {
	got, verr := Validate(validTrackMap())
	require.Nil(t, verr)

	data, err := json.Marshal(got)
	require.NoError(t, err)

	back, err := UnmarshalIntent(data)
	require.NoError(t, err)
	assert.Equal(t, got.Name(), back.Name())
	assert.Equal(t, "Haim", back.(TrackIntent).Artist)
}

func TestUnmarshalIntent_UnknownIntent(t *testing.T) {
	_, err := UnmarshalIntent([]byte(`{"intent":"order_pizza"}`))
	assert.Error(t, err)
}
