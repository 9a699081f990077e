package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		intent     Intent
		wantNeeded bool
	}{
		{
			"low confidence destructive",
			TrackIntent{Meta: Meta{Intent: PlaySpecificSong, Confidence: 0.5}},
			true,
		},
		{
			"high confidence destructive",
			TrackIntent{Meta: Meta{Intent: PlaySpecificSong, Confidence: 0.9}},
			false,
		},
		{
			"threshold is exclusive",
			TrackIntent{Meta: Meta{Intent: QueueSpecificSong, Confidence: 0.7}},
			false,
		},
		{
			"non-destructive never confirms",
			InfoIntent{Meta: Meta{Intent: GetCurrentTrack, Confidence: 0.1}},
			false,
		},
		{
			"conversational never confirms",
			ChatIntent{Meta: Meta{Intent: Chat, Confidence: 0.0}},
			false,
		},
		{
			"low confidence playlist",
			PlaylistIntent{Meta: Meta{Intent: QueuePlaylist, Confidence: 0.3}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNeeded, NeedsConfirmation(tt.intent))
		})
	}
}

func TestIsDestructive(t *testing.T) {
	destructive := []string{PlaySpecificSong, QueueSpecificSong, QueueMultipleSong, PlayPlaylist, QueuePlaylist}
	for _, name := range destructive {
		assert.True(t, IsDestructive(name), name)
	}

	harmless := []string{Pause, SetVolume, GetCurrentTrack, Search, Chat, ClarificationMode, Unknown}
	for _, name := range harmless {
		assert.False(t, IsDestructive(name), name)
	}
}
