// Package player is the execution boundary: given a validated intent, make
// the playback backend do it. The engine consumes the outcome, never the
// intent itself.
package player

import (
	"context"
	"fmt"

	"github.com/dblumenau/djforge-go/internal/intent"
)

// ExecutionResult is the outcome of executing an intent against the
// playback backend. Its success flag, not the raw intent, is what feeds the
// dialog-state update.
type ExecutionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Executor performs a validated intent against a playback backend.
type Executor interface {
	Execute(ctx context.Context, i intent.Intent) (*ExecutionResult, error)
}

// Noop acknowledges intents without a live playback backend attached.
// Useful for local runs and as the default wiring until a real client is
// configured.
type Noop struct{}

// NewNoop creates the acknowledging executor.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Execute(_ context.Context, i intent.Intent) (*ExecutionResult, error) {
	return &ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("accepted %s (no playback backend configured)", i.Name()),
	}, nil
}
