package ai

import (
	"fmt"
	"strings"
)

// Difficulty levels accepted by the generation endpoints.
var ValidDifficulties = []string{"beginner", "intermediate", "advanced"}

// ValidDifficulty reports whether d is one of the accepted difficulty levels.
func ValidDifficulty(d string) bool {
	for _, v := range ValidDifficulties {
		if d == v {
			return true
		}
	}
	return false
}

// subjectKeywords maps a subject type to the topic keywords that select it.
var subjectKeywords = map[string][]string{
	"math":           {"math", "algebra", "calculus", "geometry"},
	"science":        {"physics", "chemistry", "biology"},
	"social_studies": {"history", "geography", "economics"},
	"programming":    {"python", "java", "programming", "code"},
}

// subjectOrder keeps classification deterministic when a topic matches
// keywords from more than one subject.
var subjectOrder = []string{"math", "science", "social_studies", "programming"}

// SubjectType classifies a topic into a coarse subject used to specialize
// prompts. Unrecognized topics fall back to "general".
func SubjectType(topic string) string {
	topic = strings.ToLower(topic)
	for _, subject := range subjectOrder {
		for _, kw := range subjectKeywords[subject] {
			if strings.Contains(topic, kw) {
				return subject
			}
		}
	}
	return "general"
}

// LessonPrompt builds the prompt for lesson generation.
func LessonPrompt(topic, difficulty, subjectType string) []Message {
	return []Message{
		{Role: "system", Content: fmt.Sprintf(
			"You are an expert %s tutor. Create a detailed lesson about %s for %s level students.",
			subjectType, topic, difficulty)},
		{Role: "user", Content: fmt.Sprintf(
			"Please create a lesson about %s that is suitable for %s level students. Include examples and explanations.",
			topic, difficulty)},
	}
}

// QuizPrompt builds the prompt for quiz generation. The system message pins
// the JSON shape the quiz parser expects.
func QuizPrompt(topic, difficulty, subjectType string) []Message {
	return []Message{
		{Role: "system", Content: fmt.Sprintf(
			`You are an expert %s tutor. Create a quiz about %s for %s level students. Return the response in JSON format with the following structure: {"questions": [{"question": "...", "options": ["A", "B", "C", "D"], "correct_answer": "...", "explanation": "..."}]}`,
			subjectType, topic, difficulty)},
		{Role: "user", Content: fmt.Sprintf(
			"Please create a quiz about %s that is suitable for %s level students. Include 5 multiple choice questions with answers. Format your response as a valid JSON object.",
			topic, difficulty)},
	}
}

// FeedbackPrompt builds the prompt comparing a student's answer to the correct one.
func FeedbackPrompt(answer, correctAnswer string) []Message {
	return []Message{
		{Role: "system", Content: "You are an encouraging tutor providing constructive feedback."},
		{Role: "user", Content: fmt.Sprintf(
			"Compare this answer: '%s' with the correct answer: '%s'. Provide constructive feedback.",
			answer, correctAnswer)},
	}
}
