package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dblumenau/djforge-go/internal/api"
	"github.com/dblumenau/djforge-go/internal/auth"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the caller's audit log entries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	params := DefaultListParams()
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			params.Page = page
		}
	}
	if v := q.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 && size <= 100 {
			params.PageSize = size
		}
	}
	params.EventType = q.Get("event_type")
	params.Severity = q.Get("severity")

	if v := q.Get("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			params.From = &ts
		}
	}
	if v := q.Get("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			params.To = &ts
		}
	}

	logs, total, err := h.repo.ListByUser(r.Context(), claims.UserID, params)
	if err != nil {
		slog.Error("listing audit logs", "error", err, "user", claims.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}
