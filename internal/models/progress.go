package models

import "time"

// Progress records a completed learning activity and its score.
type Progress struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Topic       string    `json:"topic"`
	Score       float64   `json:"score"`
	Feedback    string    `json:"feedback,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
