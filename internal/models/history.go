package models

import "time"

// Content types stored in search history.
const (
	ContentTypeLesson = "lesson"
	ContentTypeQuiz   = "quiz"
)

// SearchHistory is one generated lesson or quiz saved for a user.
type SearchHistory struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Topic       string    `json:"topic"`
	Difficulty  string    `json:"difficulty"`
	Content     string    `json:"content,omitempty"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
