// Package conversation persists the per-user command history and the single
// live dialog-state record that grounds ambiguous follow-ups.
package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/dblumenau/djforge-go/internal/intent"
)

// Interaction modes for DialogState.
const (
	ModeMusic = "music"
	ModeChat  = "chat"
)

// Last-action types.
const (
	ActionPlay  = "play"
	ActionQueue = "queue"
)

// Entry is one processed command with its interpretation and, optionally,
// the execution response. Entries are immutable once written.
type Entry struct {
	Command        string          `json:"command"`
	Interpretation intent.Intent   `json:"interpretation"`
	Timestamp      int64           `json:"timestamp"` // unix milliseconds
	Response       json.RawMessage `json:"response,omitempty"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var aux struct {
		Command        string          `json:"command"`
		Interpretation json.RawMessage `json:"interpretation"`
		Timestamp      int64           `json:"timestamp"`
		Response       json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	parsed, err := intent.UnmarshalIntent(aux.Interpretation)
	if err != nil {
		return fmt.Errorf("decoding entry interpretation: %w", err)
	}

	e.Command = aux.Command
	e.Interpretation = parsed
	e.Timestamp = aux.Timestamp
	e.Response = aux.Response
	return nil
}

// LastAction records the most recent state-changing intent for a user.
type LastAction struct {
	Type         string               `json:"type"` // play | queue
	Intent       string               `json:"intent"`
	Artist       string               `json:"artist,omitempty"`
	Track        string               `json:"track,omitempty"`
	Album        string               `json:"album,omitempty"`
	Query        string               `json:"query,omitempty"`
	Timestamp    int64                `json:"timestamp"`
	Alternatives []intent.Alternative `json:"alternatives,omitempty"`
}

// DialogState is the single live record of "what last happened" for a user.
// It is fully overwritten on each update; the later write wins.
type DialogState struct {
	LastAction      *LastAction          `json:"last_action"`
	LastCandidates  []intent.Alternative `json:"last_candidates,omitempty"`
	InteractionMode string               `json:"interaction_mode"`
	UpdatedAt       int64                `json:"updated_at"`
}

// Config holds the history store bounds. The defaults match the production
// values: 8 retained entries, 30-day conversation TTL, 500-char field cap.
type Config struct {
	MaxEntries    int
	TTLSeconds    int
	MaxFieldLen   int
	MaxResponseSz int
}

// DefaultConfig returns the production bounds.
func DefaultConfig() Config {
	return Config{
		MaxEntries:    8,
		TTLSeconds:    30 * 24 * 3600,
		MaxFieldLen:   500,
		MaxResponseSz: 4096,
	}
}
