package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/repo"
)

// ==========================
// History Handler (per-user search history)
// ==========================
type HistoryHandler struct {
	History *repo.HistoryRepo
}

// ==========================
// List History
// ==========================
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	entries, err := h.History.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("listing history failed", "user_id", user.ID, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// ==========================
// Get History Entry
// ==========================
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid history id", http.StatusBadRequest)
		return
	}

	entry, err := h.History.GetByID(r.Context(), id)
	if err != nil {
		slog.Error("fetching history entry failed", "id", id, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entry == nil {
		JSONError(w, "History entry not found", http.StatusNotFound)
		return
	}
	if entry.UserID != user.ID {
		JSONError(w, "Access denied", http.StatusForbidden)
		return
	}

	JSON(w, http.StatusOK, entry)
}

// ==========================
// Delete History Entry
// ==========================
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid history id", http.StatusBadRequest)
		return
	}

	// Delete is scoped to the owner, so another user's entry comes back
	// not-deleted just like a missing one.
	deleted, err := h.History.Delete(r.Context(), id, user.ID)
	if err != nil {
		slog.Error("deleting history entry failed", "id", id, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if !deleted {
		JSONError(w, "History entry not found", http.StatusNotFound)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"message": "History entry deleted"})
}

// ==========================
// Clear History
// ==========================
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	removed, err := h.History.ClearForUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("clearing history failed", "user_id", user.ID, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "History cleared",
		"deleted": removed,
	})
}
