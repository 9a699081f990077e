package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/intent"
)

func entryAt(command string, in intent.Intent, ts int64) conversation.Entry {
	return conversation.Entry{Command: command, Interpretation: in, Timestamp: ts}
}

func playEntry(command, artist, track string, ts int64, alts ...intent.Alternative) conversation.Entry {
	return entryAt(command, intent.TrackIntent{
		Meta:         intent.Meta{Intent: intent.PlaySpecificSong, Confidence: 0.9, Reasoning: "t"},
		Artist:       artist,
		Track:        track,
		Alternatives: alts,
	}, ts)
}

func chatEntry(command string, ts int64) conversation.Entry {
	return entryAt(command, intent.ChatIntent{
		Meta: intent.Meta{Intent: intent.AskQuestion, Confidence: 0.9, Reasoning: "t"},
	}, ts)
}

func TestSelect_SimilarityUsesOnlyLastAction(t *testing.T) {
	now := time.Now()
	ts := now.UnixMilli()

	// A and B are older topics that must not leak into the request.
	history := []conversation.Entry{
		playEntry("play closer", "Chainsmokers", "Closer", ts-100000),
		chatEntry("who wrote that", ts-400000),
		playEntry("play shake it off", "Taylor Swift", "Shake It Off", ts-500000),
	}
	state := &conversation.DialogState{
		LastAction: &conversation.LastAction{
			Type:      conversation.ActionPlay,
			Intent:    intent.PlaySpecificSong,
			Artist:    "Chainsmokers",
			Track:     "Closer",
			Timestamp: ts - 100000,
		},
		InteractionMode: conversation.ModeMusic,
	}

	got := Select("queue a playlist with similar stuff", history, state, now)

	require.Len(t, got, 1)
	track := got[0].Interpretation.(intent.TrackIntent)
	assert.Equal(t, "Chainsmokers", track.Artist)
	assert.Equal(t, "Closer", track.Track)
	for _, e := range got {
		assert.NotContains(t, e.Command, "shake it off")
	}
}

func TestSelect_SimilarityWithoutLastAction(t *testing.T) {
	now := time.Now()
	history := []conversation.Entry{playEntry("play closer", "A", "B", now.UnixMilli())}

	assert.Empty(t, Select("something similar", history, nil, now))
	assert.Empty(t, Select("something similar", history, &conversation.DialogState{}, now))
}

func TestSelect_ReferenceWantsEntriesWithAlternatives(t *testing.T) {
	now := time.Now()
	ts := now.UnixMilli()

	history := []conversation.Entry{
		playEntry("play gasoline", "Halsey", "Gasoline", ts,
			intent.Alt("Haim - Gasoline (ft. Taylor Swift)"), intent.Alt("Seether - Gasoline")),
		playEntry("play closer", "Chainsmokers", "Closer", ts-1000),
		playEntry("play toxic", "Britney Spears", "Toxic", ts-2000,
			intent.Alt("2WEI - Toxic")),
		playEntry("play roses", "SAINt JHN", "Roses", ts-3000,
			intent.Alt("The Chainsmokers - Roses")),
	}

	got := Select("no the taylor swift one", history, nil, now)

	require.Len(t, got, 2)
	assert.Equal(t, "play gasoline", got[0].Command)
	assert.Equal(t, "play toxic", got[1].Command)
}

func TestSelect_GeneralFiltersToRecentDestructive(t *testing.T) {
	now := time.Now()
	ts := now.UnixMilli()

	history := []conversation.Entry{
		chatEntry("what year was that released", ts-60_000),
		playEntry("play gasoline", "Halsey", "Gasoline", ts-120_000),
		playEntry("play closer", "Chainsmokers", "Closer", ts-20*60_000), // outside the window
		playEntry("play toxic", "Britney Spears", "Toxic", ts-180_000),
	}

	got := Select("queue something upbeat", history, nil, now)

	require.Len(t, got, 2)
	assert.Equal(t, "play gasoline", got[0].Command)
	assert.Equal(t, "play toxic", got[1].Command)
}

func TestSelect_GeneralImmediateReferentTakesOne(t *testing.T) {
	now := time.Now()
	ts := now.UnixMilli()

	history := []conversation.Entry{
		playEntry("play gasoline", "Halsey", "Gasoline", ts-60_000),
		playEntry("play toxic", "Britney Spears", "Toxic", ts-120_000),
	}

	got := Select("queue that too", history, nil, now)

	require.Len(t, got, 1)
	assert.Equal(t, "play gasoline", got[0].Command)
}

func TestSelect_GeneralImmediateReferentSuffixForm(t *testing.T) {
	now := time.Now()
	ts := now.UnixMilli()

	history := []conversation.Entry{
		playEntry("play gasoline", "Halsey", "Gasoline", ts-60_000),
		playEntry("play toxic", "Britney Spears", "Toxic", ts-120_000),
	}

	got := Select("queuethat louder", history, nil, now)

	require.Len(t, got, 1)
	assert.Equal(t, "play gasoline", got[0].Command)
}

func TestSelect_GeneralEmptyHistory(t *testing.T) {
	assert.Empty(t, Select("play gasoline", nil, nil, time.Now()))
}

func TestFormatContext(t *testing.T) {
	assert.Empty(t, FormatContext(nil))

	entries := []conversation.Entry{
		playEntry("play gasoline", "Halsey", "Gasoline", 1, intent.Alt("Seether - Gasoline")),
	}
	got := FormatContext(entries)
	assert.Contains(t, got, `"play gasoline"`)
	assert.Contains(t, got, "play_specific_song")
	assert.Contains(t, got, "Halsey - Gasoline")
	assert.Contains(t, got, "Seether - Gasoline")
}
