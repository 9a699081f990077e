package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		command string
		want    Kind
	}{
		{"queue a playlist with similar stuff", KindSimilarity},
		{"play something like that", KindSimilarity},
		{"more of the same please", KindSimilarity},
		{"keep the same vibe going", KindSimilarity},
		{"give me more like this", KindSimilarity},

		{"no the taylor swift one", KindReference},
		{"yes that one", KindReference},
		{"actually make it the acoustic version", KindReference},
		{"try the live version", KindReference},
		{"play the seether one instead", KindReference},
		{"queue the halsey one", KindReference},

		{"play gasoline by halsey", KindGeneral},
		{"pause", KindGeneral},
		{"turn the volume up to 80", KindGeneral},
		{"what song is this", KindGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.command))
		})
	}
}

func TestClassify_SimilarityWinsOverReference(t *testing.T) {
	// "similar" is checked before reference rules; a trailing "instead"
	// must not turn a similarity request into a reference.
	assert.Equal(t, KindSimilarity, Classify("play something similar instead"))
}

func TestImmediateReferent(t *testing.T) {
	// The referent token counts as a whole word or as a suffix, so
	// run-together typing still narrows context to the latest action.
	assert.True(t, immediateReferent.MatchString("play this"))
	assert.True(t, immediateReferent.MatchString("queue that too"))
	assert.True(t, immediateReferent.MatchString("playthis again"))
	assert.True(t, immediateReferent.MatchString("queuethat"))
	assert.False(t, immediateReferent.MatchString("pick a thistle song"))
	assert.False(t, immediateReferent.MatchString("play gasoline"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "similarity", KindSimilarity.String())
	assert.Equal(t, "reference", KindReference.String())
	assert.Equal(t, "general", KindGeneral.String())
}
