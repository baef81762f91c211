package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnosislabs/gnosis-api/cmd/cli/config"
	"github.com/gnosislabs/gnosis-api/cmd/cli/output"
)

// ==========================
// Init History
// ==========================
func InitHistory(rootCmd *cobra.Command) {

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage your search history",
	}

	historyCmd.AddCommand(
		listHistoryCmd(),
		showHistoryCmd(),
		deleteHistoryCmd(),
		clearHistoryCmd(),
	)

	rootCmd.AddCommand(historyCmd)

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "View and record quiz results",
	}

	progressCmd.AddCommand(
		listProgressCmd(),
		addProgressCmd(),
	)

	rootCmd.AddCommand(progressCmd)
}

// ==========================
// LIST
// ==========================
func listHistoryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				History []struct {
					ID          int       `json:"id"`
					Topic       string    `json:"topic"`
					Difficulty  string    `json:"difficulty"`
					ContentType string    `json:"content_type"`
					CreatedAt   time.Time `json:"created_at"`
				} `json:"history"`
			}
			if err := doAuthed("GET", "/learning/history", &out); err != nil {
				return err
			}

			if asJSON {
				pretty, _ := json.MarshalIndent(out.History, "", "  ")
				fmt.Println(string(pretty))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.History))
			for _, e := range out.History {
				rows = append(rows, []interface{}{
					e.ID, e.Topic, e.Difficulty, e.ContentType,
					e.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			output.RenderTable([]string{"ID", "Topic", "Difficulty", "Type", "Created"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	return cmd
}

// ==========================
// SHOW
// ==========================
func showHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one history entry including its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Topic       string `json:"topic"`
				Difficulty  string `json:"difficulty"`
				ContentType string `json:"content_type"`
				Content     string `json:"content"`
			}
			if err := doAuthed("GET", "/learning/history/"+args[0], &out); err != nil {
				return err
			}
			fmt.Printf("%s (%s %s)\n\n", out.Topic, out.Difficulty, out.ContentType)
			fmt.Println(out.Content)
			return nil
		},
	}
}

// ==========================
// DELETE
// ==========================
func deleteHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doAuthed("DELETE", "/learning/history/"+args[0], nil); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

// ==========================
// CLEAR
// ==========================
func clearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Deleted int64 `json:"deleted"`
			}
			if err := doAuthed("DELETE", "/learning/history", &out); err != nil {
				return err
			}
			fmt.Printf("Removed %d entries.\n", out.Deleted)
			return nil
		},
	}
}

// ==========================
// PROGRESS LIST
// ==========================
func listProgressCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Progress []struct {
					ID          int       `json:"id"`
					Topic       string    `json:"topic"`
					Score       float64   `json:"score"`
					CompletedAt time.Time `json:"completed_at"`
				} `json:"progress"`
			}
			if err := doAuthed("GET", "/learning/progress", &out); err != nil {
				return err
			}

			if asJSON {
				pretty, _ := json.MarshalIndent(out.Progress, "", "  ")
				fmt.Println(string(pretty))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.Progress))
			for _, p := range out.Progress {
				rows = append(rows, []interface{}{
					p.ID, p.Topic, fmt.Sprintf("%.0f%%", p.Score),
					p.CompletedAt.Format("2006-01-02 15:04"),
				})
			}
			output.RenderTable([]string{"ID", "Topic", "Score", "Completed"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	return cmd
}

// ==========================
// PROGRESS ADD
// ==========================
func addProgressCmd() *cobra.Command {
	var topic, feedback string
	var score float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a quiz result",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"topic":    topic,
				"score":    score,
				"feedback": feedback,
			}
			if err := postAuthed("/learning/progress", payload, nil); err != nil {
				return err
			}
			fmt.Println("Recorded.")
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic of the quiz")
	cmd.Flags().Float64Var(&score, "score", 0, "Score from 0 to 100")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Optional feedback to store")
	cmd.MarkFlagRequired("topic")
	cmd.MarkFlagRequired("score")

	return cmd
}

// doAuthed sends a bodyless request with the stored token and decodes the response.
func doAuthed(method, path string, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	req, err := http.NewRequest(method, config.APIURL()+path, nil)
	if err != nil {
		return err
	}
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

// postAuthed sends a JSON POST with the stored token.
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
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
