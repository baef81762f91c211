package learn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gnosislabs/gnosis-api/cmd/cli/config"
)

// ==========================
// Init Learn
// ==========================
func InitLearn(rootCmd *cobra.Command) {

	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Generate lessons, quizzes, and feedback",
	}

	learnCmd.AddCommand(
		lessonCmd(),
		quizCmd(),
		feedbackCmd(),
		videoCmd(),
	)

	rootCmd.AddCommand(learnCmd)
}

// ==========================
// LESSON
// ==========================
func lessonCmd() *cobra.Command {
	var topic, difficulty string

	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Generate a lesson on a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Lesson string `json:"lesson"`
			}
			payload := map[string]string{"topic": topic, "difficulty": difficulty}
			if err := postAuthed("/ai/lesson", payload, &out); err != nil {
				return err
			}
			fmt.Println(out.Lesson)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic to learn about")
	cmd.Flags().StringVar(&difficulty, "difficulty", "intermediate", "beginner, intermediate, or advanced")
	cmd.MarkFlagRequired("topic")

	return cmd
}

// ==========================
// QUIZ
// ==========================
func quizCmd() *cobra.Command {
	var topic, difficulty string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a quiz on a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Questions []struct {
					Question      string   `json:"question"`
					Options       []string `json:"options"`
					CorrectAnswer string   `json:"correct_answer"`
					Explanation   string   `json:"explanation"`
				} `json:"questions"`
			}
			payload := map[string]string{"topic": topic, "difficulty": difficulty}
			if err := postAuthed("/ai/quiz", payload, &out); err != nil {
				return err
			}

			for i, q := range out.Questions {
				fmt.Printf("%d. %s\n", i+1, q.Question)
				for j, opt := range q.Options {
					fmt.Printf("   %c) %s\n", 'a'+j, opt)
				}
				fmt.Printf("   Answer: %s\n", q.CorrectAnswer)
				if q.Explanation != "" {
					fmt.Printf("   %s\n", q.Explanation)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic to be quizzed on")
	cmd.Flags().StringVar(&difficulty, "difficulty", "intermediate", "beginner, intermediate, or advanced")
	cmd.MarkFlagRequired("topic")

	return cmd
}

// ==========================
// FEEDBACK
// ==========================
func feedbackCmd() *cobra.Command {
	var answer, correct string

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Get feedback on a quiz answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Feedback string `json:"feedback"`
			}
			payload := map[string]string{"answer": answer, "correct_answer": correct}
			if err := postAuthed("/ai/feedback", payload, &out); err != nil {
				return err
			}
			fmt.Println(out.Feedback)
			return nil
		},
	}

	cmd.Flags().StringVar(&answer, "answer", "", "The answer you gave")
	cmd.Flags().StringVar(&correct, "correct", "", "The correct answer")
	cmd.MarkFlagRequired("answer")

	return cmd
}

// ==========================
// VIDEO
// ==========================
func videoCmd() *cobra.Command {
	var topic, difficulty string

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Find a tutorial video for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				VideoID     string `json:"videoId"`
				Title       string `json:"title"`
				Description string `json:"description"`
			}
			payload := map[string]string{"topic": topic, "difficulty": difficulty}
			if err := postAuthed("/ai/video", payload, &out); err != nil {
				return err
			}
			fmt.Println(out.Title)
			fmt.Println("https://www.youtube.com/watch?v=" + out.VideoID)
			if out.Description != "" {
				fmt.Println(out.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic to find a video for")
	cmd.Flags().StringVar(&difficulty, "difficulty", "intermediate", "beginner, intermediate, or advanced")
	cmd.MarkFlagRequired("topic")

	return cmd
}

// postAuthed sends a JSON POST with the stored token and decodes the response.
func postAuthed(path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
