package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gnosislabs/gnosis-api/internal/ai"
	"github.com/gnosislabs/gnosis-api/internal/metrics"
	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/gnosislabs/gnosis-api/internal/repo"
	"github.com/gnosislabs/gnosis-api/internal/youtube"
)

// Input limits for generation requests.
const (
	MaxTopicLength  = 200
	MaxAnswerLength = 1000
)

// ==========================
// AI Handler (lesson/quiz/feedback generation + video search)
// ==========================
type AIHandler struct {
	History *repo.HistoryRepo
	AI      *ai.Client
	Videos  *youtube.Client
}

// validateGeneration checks topic and difficulty limits shared by the
// generation endpoints.
func validateGeneration(topic, difficulty string) map[string]string {
	fields := make(map[string]string)
	if topic == "" {
		fields["topic"] = "required"
	} else if len(topic) > MaxTopicLength {
		fields["topic"] = "must be at most 200 characters"
	}
	if difficulty != "" && !ai.ValidDifficulty(difficulty) {
		fields["difficulty"] = "must be one of: beginner, intermediate, advanced"
	}
	return fields
}

// saveHistory records a generation best effort. Content generation already
// succeeded at this point; a history write failure is logged, not surfaced.
func (h *AIHandler) saveHistory(r *http.Request, user *models.User, topic, difficulty, content, contentType string) *int {
	entry, err := h.History.Create(r.Context(), user.ID, topic, difficulty, content, contentType)
	if err != nil {
		slog.Error("saving generation to history failed",
			"content_type", contentType, "user_id", user.ID, "error", err.Error())
		return nil
	}
	return &entry.ID
}

// ==========================
// Generate Lesson
// ==========================
func (h *AIHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	var input struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Difficulty == "" {
		input.Difficulty = "intermediate"
	}
	if fields := validateGeneration(input.Topic, input.Difficulty); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	subject := ai.SubjectType(input.Topic)
	prompt := ai.LessonPrompt(input.Topic, input.Difficulty, subject)

	content, err := h.AI.ChatCompletion(r.Context(), prompt, false)
	if err != nil {
		metrics.RecordGeneration(models.ContentTypeLesson, false)
		slog.Error("lesson generation failed", "topic", input.Topic, "error", err.Error())
		JSONError(w, "Failed to generate lesson content", http.StatusInternalServerError)
		return
	}
	metrics.RecordGeneration(models.ContentTypeLesson, true)

	historyID := h.saveHistory(r, user, input.Topic, input.Difficulty, content, models.ContentTypeLesson)

	JSON(w, http.StatusOK, map[string]interface{}{
		"lesson":     ai.FormatLesson(content),
		"history_id": historyID,
	})
}

// ==========================
// Generate Quiz
// ==========================
func (h *AIHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.ErrMessageUnauthenticated, http.StatusUnauthorized)
		return
	}

	var input struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Difficulty == "" {
		input.Difficulty = "intermediate"
	}
	if fields := validateGeneration(input.Topic, input.Difficulty); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	subject := ai.SubjectType(input.Topic)
	prompt := ai.QuizPrompt(input.Topic, input.Difficulty, subject)

	content, err := h.AI.ChatCompletion(r.Context(), prompt, true)
	if err != nil {
		metrics.RecordGeneration(models.ContentTypeQuiz, false)
		slog.Error("quiz generation failed", "topic", input.Topic, "error", err.Error())
		JSONError(w, "Failed to generate quiz content", http.StatusInternalServerError)
		return
	}

	quiz, err := ai.ParseQuiz(content)
	if err != nil {
		metrics.RecordGeneration(models.ContentTypeQuiz, false)
		slog.Error("quiz parse failed", "topic", input.Topic, "error", err.Error())
		JSONError(w, "Invalid quiz format", http.StatusInternalServerError)
		return
	}
	metrics.RecordGeneration(models.ContentTypeQuiz, true)

	// LaTeX cleanup only matters where math notation shows up.
	if subject == "math" || subject == "science" {
		quiz.FormatLaTeX()
	}

	stored, _ := json.Marshal(quiz)
	historyID := h.saveHistory(r, user, input.Topic, input.Difficulty, string(stored), models.ContentTypeQuiz)

	JSON(w, http.StatusOK, map[string]interface{}{
		"questions":  quiz.Questions,
		"history_id": historyID,
	})
}

// ==========================
// Get Feedback (compare a student's answer with the correct one)
// ==========================
func (h *AIHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Answer        string `json:"answer"`
		CorrectAnswer string `json:"correct_answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Answer == "" {
		fields["answer"] = "required"
	} else if len(input.Answer) > MaxAnswerLength {
		fields["answer"] = "must be at most 1000 characters"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	feedback, err := h.AI.ChatCompletion(r.Context(),
		ai.FeedbackPrompt(input.Answer, input.CorrectAnswer), false)
	if err != nil {
		metrics.RecordGeneration("feedback", false)
		slog.Error("feedback generation failed", "error", err.Error())
		JSONError(w, "Failed to generate feedback", http.StatusInternalServerError)
		return
	}
	metrics.RecordGeneration("feedback", true)

	JSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

// ==========================
// Search Video
// ==========================
func (h *AIHandler) SearchVideo(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Topic == "" {
		JSONError(w, "Topic is required", http.StatusBadRequest)
		return
	}
	if input.Difficulty == "" {
		input.Difficulty = "intermediate"
	}

	video, err := h.Videos.SearchVideo(r.Context(), input.Topic, input.Difficulty)
	if err != nil {
		if err == youtube.ErrNoResults {
			JSONError(w, "No suitable videos found for this topic", http.StatusNotFound)
			return
		}
		slog.Error("video search failed", "topic", input.Topic, "error", err.Error())
		JSONError(w, "Failed to search videos. Please try again later.", http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, video)
}

// ==========================
// Test API Key (round trip to the completion API)
// ==========================
func (h *AIHandler) TestAPIKey(w http.ResponseWriter, r *http.Request) {
	_, err := h.AI.ChatCompletion(r.Context(),
		[]ai.Message{{Role: "user", Content: "Hello!"}}, false)
	if err != nil {
		JSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "API key is valid",
	})
}
