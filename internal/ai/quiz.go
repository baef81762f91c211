package ai

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrQuizFormat is returned when the model's quiz JSON is missing questions.
var ErrQuizFormat = errors.New("quiz is missing questions")

// Question is one multiple-choice quiz question.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is the parsed structure the quiz prompt asks the model for.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// ParseQuiz decodes the model's quiz JSON and validates its shape.
func ParseQuiz(content string) (*Quiz, error) {
	var quiz Quiz
	if err := json.Unmarshal([]byte(content), &quiz); err != nil {
		return nil, fmt.Errorf("parse quiz JSON: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizFormat
	}
	return &quiz, nil
}

// FormatLaTeX normalizes math notation in every question field. Applied for
// math and science subjects only.
func (q *Quiz) FormatLaTeX() {
	for i := range q.Questions {
		question := &q.Questions[i]
		question.Question = FormatLaTeX(question.Question)
		for j, opt := range question.Options {
			question.Options[j] = FormatLaTeX(opt)
		}
		question.CorrectAnswer = FormatLaTeX(question.CorrectAnswer)
		if question.Explanation != "" {
			question.Explanation = FormatLaTeX(question.Explanation)
		}
	}
}
