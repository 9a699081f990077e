package engine

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dblumenau/djforge-go/internal/api"
	"github.com/dblumenau/djforge-go/internal/auth"
	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/intent"
	"github.com/dblumenau/djforge-go/internal/player"
)

type Handler struct {
	engine   *Engine
	executor player.Executor
	validate *validator.Validate
}

func NewHandler(engine *Engine, executor player.Executor) *Handler {
	return &Handler{
		engine:   engine,
		executor: executor,
		validate: validator.New(),
	}
}

type commandRequest struct {
	Command   string `json:"command" validate:"required,min=1,max=500"`
	Confirmed bool   `json:"confirmed"`
}

type commandResponse struct {
	Interpretation    intent.Intent           `json:"interpretation,omitempty"`
	NeedsConfirmation bool                    `json:"needs_confirmation"`
	Executed          bool                    `json:"executed"`
	Execution         *player.ExecutionResult `json:"execution,omitempty"`
	ContextUsed       []conversation.Entry    `json:"context_used"`
	Error             *intent.ValidationError `json:"validation_error,omitempty"`
}

// ProcessCommand interprets a command and, unless the confirmation gate
// holds it back, executes it and records the outcome.
func (h *Handler) ProcessCommand(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.engine.ProcessCommand(r.Context(), claims.UserID, req.Command)
	if err != nil {
		slog.Error("processing command", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrUpstreamModel)
		return
	}

	if result.Err != nil {
		api.JSON(w, http.StatusUnprocessableEntity, commandResponse{
			ContextUsed: result.ContextUsed,
			Error:       result.Err,
		})
		return
	}

	resp := commandResponse{
		Interpretation:    result.Interpretation,
		NeedsConfirmation: result.NeedsConfirmation && !req.Confirmed,
		ContextUsed:       result.ContextUsed,
	}

	if resp.NeedsConfirmation {
		api.JSON(w, http.StatusOK, resp)
		return
	}

	exec, err := h.executor.Execute(r.Context(), result.Interpretation)
	if err != nil {
		slog.Error("executing intent", "error", err, "intent", result.Interpretation.Name())
		exec = &player.ExecutionResult{Success: false, Message: "execution failed"}
	}
	resp.Executed = true
	resp.Execution = exec

	if err := h.engine.RecordOutcome(r.Context(), claims.UserID, req.Command, result.Interpretation, exec); err != nil {
		// The command already ran; a persistence failure must not fail the turn.
		slog.Warn("recording outcome", "error", err, "user", claims.UserID)
	}

	api.JSON(w, http.StatusOK, resp)
}

type outcomeRequest struct {
	Command        string          `json:"command" validate:"required,min=1,max=500"`
	Interpretation json.RawMessage `json:"interpretation" validate:"required"`
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
}

// RecordOutcome lets a caller that executed the intent itself report what
// happened, so follow-up commands are grounded correctly.
func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	parsed, err := intent.UnmarshalIntent(req.Interpretation)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("interpretation is not a valid intent"))
		return
	}

	exec := &player.ExecutionResult{Success: req.Success, Message: req.Message}
	if err := h.engine.RecordOutcome(r.Context(), claims.UserID, req.Command, parsed, exec); err != nil {
		slog.Error("recording outcome", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "outcome recorded")
}

// GetHistory returns the user's retained turns, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	entries, err := h.engine.History(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("loading history", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrServiceUnavail)
		return
	}

	api.JSON(w, http.StatusOK, entries)
}

// ClearHistory wipes the user's history and dialog state.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.engine.ClearHistory(r.Context(), claims.UserID); err != nil {
		slog.Error("clearing history", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "history cleared")
}

// GetDialogState returns the live dialog state, or null when none exists.
func (h *Handler) GetDialogState(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	state, err := h.engine.DialogState(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("loading dialog state", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrServiceUnavail)
		return
	}

	api.JSON(w, http.StatusOK, state)
}
