package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/repo"
)

// ==========================
// Progress Handler (quiz score records)
// ==========================
type ProgressHandler struct {
	Progress *repo.ProgressRepo
}

// ==========================
// List Progress
// ==========================
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	records, err := h.Progress.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("listing progress failed", "user_id", user.ID, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"progress": records})
}

// ==========================
// Record Progress
// ==========================
func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	var input struct {
		Topic    string   `json:"topic"`
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Topic == "" {
		fields["topic"] = "required"
	} else if len(input.Topic) > MaxTopicLength {
		fields["topic"] = "must be at most 200 characters"
	}
	if input.Score == nil {
		fields["score"] = "required"
	} else if *input.Score < 0 || *input.Score > 100 {
		fields["score"] = "must be between 0 and 100"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	record, err := h.Progress.Create(r.Context(), user.ID, input.Topic, *input.Score, input.Feedback)
	if err != nil {
		slog.Error("recording progress failed", "user_id", user.ID, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, record)
}
