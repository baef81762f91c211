package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gnosislabs/gnosis-api/internal/auth"
	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/gnosislabs/gnosis-api/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users  *repo.UserRepo
	Issuer *auth.TokenIssuer
}

// userPayload is the user object returned by register/login.
type userPayload struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ==========================
// Register (password stored as bcrypt hash; responds 201 with a fresh token)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.Email == "" {
		fields["email"] = "required"
	} else if !strings.Contains(input.Email, "@") {
		fields["email"] = "invalid format"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		switch err {
		case repo.ErrDuplicateUsername, repo.ErrDuplicateEmail:
			JSONError(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("register: create user failed", "error", err.Error())
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.Issuer.Issue(user.ID)
	if err != nil {
		slog.Error("register: issue token failed", "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"token":   token,
		"user":    toUserPayload(user),
	})
}

// ==========================
// Login (single undifferentiated 401 for unknown user or wrong password)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if input.Username == "" || input.Password == "" {
		JSONError(w, "Missing username or password", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	if err != nil {
		JSONError(w, ErrMessageInvalidCredentials, http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		JSONError(w, ErrMessageInvalidCredentials, http.StatusUnauthorized)
		return
	}

	if err := h.Users.RecordLogin(r.Context(), user.ID); err != nil {
		// Login still succeeds; the timestamp is informational.
		slog.Warn("login: record last_login failed", "error", err.Error())
	}

	token, err := h.Issuer.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token failed", "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  toUserPayload(user),
	})
}

// ==========================
// Me (current account for the presented token)
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	out := map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
	if user.LastLogin != nil {
		out["last_login"] = user.LastLogin
	} else {
		out["last_login"] = nil
	}

	JSON(w, http.StatusOK, out)
}

// ==========================
// Check Availability (username/email lookup for signup forms)
// ==========================
func (h *AuthHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if input.Type == "" || input.Value == "" {
		JSONError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	var (
		exists bool
		err    error
		taken  string
		free   string
	)
	switch input.Type {
	case "username":
		exists, err = h.Users.UsernameExists(r.Context(), input.Value)
		taken, free = "Username is already taken", "Username is available"
	case "email":
		exists, err = h.Users.EmailExists(r.Context(), input.Value)
		taken, free = "Email is already registered", "Email is available"
	default:
		JSONError(w, "Invalid field type", http.StatusBadRequest)
		return
	}

	if err != nil {
		slog.Error("availability check failed", "type", input.Type, "error", err.Error())
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	message := free
	if exists {
		message = taken
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"available": !exists,
		"message":   message,
	})
}
