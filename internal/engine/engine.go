// Package engine orchestrates one command turn: gather context, call the
// model, resolve its output into a canonical intent, and gate execution.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/intent"
	"github.com/dblumenau/djforge-go/internal/llm"
	"github.com/dblumenau/djforge-go/internal/metrics"
	inats "github.com/dblumenau/djforge-go/internal/nats"
	"github.com/dblumenau/djforge-go/internal/player"
	"github.com/dblumenau/djforge-go/internal/selector"
)

// Result is the outcome of interpreting one command. Exactly one of
// Interpretation and Err is set: schema failures that survive repair are
// data, not a transport error.
type Result struct {
	Interpretation    intent.Intent
	NeedsConfirmation bool
	ContextUsed       []conversation.Entry
	Err               *intent.ValidationError
}

// Engine ties the history store, the model producer and the audit stream
// together. A nil publisher disables audit events without any other change
// in behavior.
type Engine struct {
	store        conversation.Store
	producer     llm.Producer
	publisher    *inats.Publisher
	historyLimit int
	now          func() time.Time
}

func New(store conversation.Store, producer llm.Producer, publisher *inats.Publisher) *Engine {
	return &Engine{
		store:        store,
		producer:     producer,
		publisher:    publisher,
		historyLimit: conversation.DefaultConfig().MaxEntries,
		now:          time.Now,
	}
}

// ProcessCommand interprets one natural-language command for a user. Store
// failures degrade to an empty context; the command still gets interpreted.
// The returned error is reserved for producer failures.
func (e *Engine) ProcessCommand(ctx context.Context, userID, command string) (*Result, error) {
	history, err := e.store.History(ctx, userID, e.historyLimit)
	if err != nil {
		slog.Warn("history unavailable, proceeding without context", "error", err, "user", userID)
		history = nil
	}

	state, err := e.store.DialogState(ctx, userID)
	if err != nil {
		slog.Warn("dialog state unavailable, proceeding without it", "error", err, "user", userID)
		state = nil
	}

	// A contextual reference that names one of the alternatives we already
	// offered is resolved locally; no model round-trip.
	if selector.Classify(command) == selector.KindReference {
		if resolved, ok := selector.ResolveReference(command, history); ok {
			metrics.ContextEntriesSelected.Observe(0)
			return e.finish(ctx, userID, resolved, nil, "reference"), nil
		}
	}

	selected := selector.Select(command, history, state, e.now())
	metrics.ContextEntriesSelected.Observe(float64(len(selected)))

	raw, err := e.producer.Interpret(ctx, command, selector.FormatContext(selected))
	if err != nil {
		metrics.CommandsProcessedTotal.WithLabelValues("unknown", "producer_error").Inc()
		return nil, fmt.Errorf("interpreting command: %w", err)
	}

	resolved, verr := intent.Resolve(raw)
	if verr != nil {
		metrics.ValidationFailuresTotal.WithLabelValues(verr.Code).Inc()
		metrics.CommandsProcessedTotal.WithLabelValues("unknown", "rejected").Inc()
		e.audit(ctx, userID, inats.EventCommandRejected, "warn", "", verr.Error())
		return &Result{ContextUsed: selected, Err: verr}, nil
	}

	return e.finish(ctx, userID, resolved, selected, "model"), nil
}

func (e *Engine) finish(ctx context.Context, userID string, i intent.Intent, contextUsed []conversation.Entry, source string) *Result {
	res := &Result{Interpretation: i, ContextUsed: contextUsed}

	if intent.NeedsConfirmation(i) {
		res.NeedsConfirmation = true
		metrics.ConfirmationsRequiredTotal.Inc()
		e.audit(ctx, userID, inats.EventConfirmationRequired, "warn", i.Name(),
			fmt.Sprintf("confidence %.2f below confirmation threshold", i.ConfidenceOf()))
	}

	metrics.CommandsProcessedTotal.WithLabelValues(i.Name(), "ok").Inc()
	e.audit(ctx, userID, inats.EventCommandProcessed, "info", i.Name(), "resolved via "+source)
	return res
}

// RecordOutcome appends the executed turn to history and rolls the dialog
// state forward. It is called after execution (or after the caller decides
// not to execute), never before.
func (e *Engine) RecordOutcome(ctx context.Context, userID, command string, i intent.Intent, exec *player.ExecutionResult) error {
	now := e.now()

	var response json.RawMessage
	if exec != nil {
		response, _ = json.Marshal(exec)
	}

	entry := conversation.Entry{
		Command:        command,
		Interpretation: i,
		Timestamp:      now.UnixMilli(),
		Response:       response,
	}
	if err := e.store.Append(ctx, userID, entry); err != nil {
		return fmt.Errorf("appending history: %w", err)
	}

	state := e.nextDialogState(ctx, userID, i, exec, now)
	if err := e.store.SetDialogState(ctx, userID, state); err != nil {
		return fmt.Errorf("updating dialog state: %w", err)
	}

	e.audit(ctx, userID, inats.EventOutcomeRecorded, "info", i.Name(), "outcome recorded")
	return nil
}

// nextDialogState computes the replacement dialog state for one recorded
// turn. Conversational turns clear the last action entirely; a successful
// play or queue replaces it; everything else carries it forward.
func (e *Engine) nextDialogState(ctx context.Context, userID string, i intent.Intent, exec *player.ExecutionResult, now time.Time) *conversation.DialogState {
	state := &conversation.DialogState{
		InteractionMode: conversation.ModeMusic,
		UpdatedAt:       now.UnixMilli(),
	}

	name := i.Name()
	if intent.IsConversational(name) {
		state.InteractionMode = conversation.ModeChat
		return state
	}

	if intent.IsDestructive(name) && exec != nil && exec.Success {
		state.LastAction = buildLastAction(i, now)
		state.LastCandidates = intent.AlternativesOf(i)
		return state
	}

	if prev, err := e.store.DialogState(ctx, userID); err == nil && prev != nil {
		state.LastAction = prev.LastAction
		state.LastCandidates = prev.LastCandidates
	}
	return state
}

// ClearHistory removes the user's history and dialog state.
func (e *Engine) ClearHistory(ctx context.Context, userID string) error {
	if err := e.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	e.audit(ctx, userID, inats.EventHistoryCleared, "info", "", "history cleared")
	return nil
}

// History returns the user's retained turns, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]conversation.Entry, error) {
	return e.store.History(ctx, userID, e.historyLimit)
}

// DialogState returns the user's live dialog state, or nil when none exists.
func (e *Engine) DialogState(ctx context.Context, userID string) (*conversation.DialogState, error) {
	return e.store.DialogState(ctx, userID)
}

func buildLastAction(i intent.Intent, now time.Time) *conversation.LastAction {
	actionType := conversation.ActionPlay
	if strings.HasPrefix(i.Name(), "queue") {
		actionType = conversation.ActionQueue
	}

	la := &conversation.LastAction{
		Type:      actionType,
		Intent:    i.Name(),
		Timestamp: now.UnixMilli(),
	}

	switch v := i.(type) {
	case intent.TrackIntent:
		la.Artist = v.Artist
		la.Track = v.Track
		la.Album = v.Album
		la.Query = v.Query
		la.Alternatives = v.Alternatives
	case intent.PlaylistIntent:
		la.Query = v.Query
		if la.Query == "" {
			la.Query = v.Playlist
		}
	case intent.MultiTrackIntent:
		la.Query = v.Theme
	}
	return la
}

func (e *Engine) audit(ctx context.Context, userID, eventType, severity, intentName, details string) {
	if e.publisher == nil {
		return
	}
	ev := inats.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		Intent:    intentName,
		Details:   details,
		Timestamp: e.now().UTC(),
	}
	if err := e.publisher.PublishAuditEvent(ctx, ev); err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", eventType)
	}
}
