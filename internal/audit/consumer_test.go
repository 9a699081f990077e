package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/dblumenau/djforge-go/internal/nats"
)

func TestAuditEventDeserialization(t *testing.T) {
	event := inats.AuditEvent{
		UserID:    "user-123",
		EventType: inats.EventCommandProcessed,
		Severity:  "info",
		Intent:    "play_specific_song",
		Details:   "resolved after one repair pass",
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded inats.AuditEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "user-123", decoded.UserID)
	assert.Equal(t, inats.EventCommandProcessed, decoded.EventType)
	assert.Equal(t, "info", decoded.Severity)
	assert.Equal(t, "play_specific_song", decoded.Intent)
	assert.Equal(t, "resolved after one repair pass", decoded.Details)
}

func TestConvertEvent(t *testing.T) {
	ts := time.Now().UTC()
	event := inats.AuditEvent{
		UserID:    "user-42",
		EventType: inats.EventConfirmationRequired,
		Severity:  "warn",
		Intent:    "play_playlist",
		Details:   "confidence 0.55 below threshold",
		Timestamp: ts,
	}

	log := convertEvent(event)

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "user-42", log.UserID)
	assert.Equal(t, inats.EventConfirmationRequired, log.EventType)
	assert.Equal(t, "warn", log.Severity)
	assert.Equal(t, "play_playlist", log.Intent)
	assert.Equal(t, ts, log.CreatedAt)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "confidence 0.55 below threshold", details["message"])
}

func TestConvertEvent_EmptyIntent(t *testing.T) {
	event := inats.AuditEvent{
		UserID:    "user-1",
		EventType: inats.EventHistoryCleared,
		Severity:  "info",
		Timestamp: time.Now().UTC(),
	}

	log := convertEvent(event)
	assert.Empty(t, log.Intent)
	assert.Equal(t, inats.EventHistoryCleared, log.EventType)
}
