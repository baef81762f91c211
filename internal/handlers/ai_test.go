package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/gnosislabs/gnosis-api/internal/ai"
	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/gnosislabs/gnosis-api/internal/repo"
	"github.com/gnosislabs/gnosis-api/internal/youtube"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionServer returns a fake chat-completion endpoint that always answers
// with the given content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func aiClientFor(server *httptest.Server) *ai.Client {
	return ai.NewClient(server.Client(), discardLogger(), server.URL, "test-key", "gpt-test")
}

// authedRequest builds a request already carrying an authenticated user, the
// way RequireUser leaves it for handlers.
func authedRequest(method, path string, body []byte, user *models.User) *http.Request {
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func TestAIHandler_GenerateLesson(t *testing.T) {
	server := completionServer(t, "Loops repeat a block of code until a condition changes.")
	defer server.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO search_history`).
		WithArgs(1, "python loops", "beginner", sqlmock.AnyArg(), "lesson").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content", "content_type", "created_at"}).
			AddRow(7, 1, "python loops", "beginner", "...", "lesson", time.Now()))

	h := &AIHandler{History: repo.NewHistoryRepo(db), AI: aiClientFor(server)}

	body := []byte(`{"topic":"python loops","difficulty":"beginner"}`)
	req := authedRequest("POST", "/ai/lesson", body, &models.User{ID: 1, Username: "alice"})
	rr := httptest.NewRecorder()
	h.GenerateLesson(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GenerateLesson status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp struct {
		Lesson    string `json:"lesson"`
		HistoryID *int   `json:"history_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Lesson == "" {
		t.Error("expected lesson content")
	}
	if resp.HistoryID == nil || *resp.HistoryID != 7 {
		t.Errorf("history_id: got %v, want 7", resp.HistoryID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// A history write failure must not fail the generation response.
func TestAIHandler_GenerateLesson_HistoryFailureIsNotFatal(t *testing.T) {
	server := completionServer(t, "Some lesson content.")
	defer server.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO search_history`).
		WillReturnError(io.ErrUnexpectedEOF)

	h := &AIHandler{History: repo.NewHistoryRepo(db), AI: aiClientFor(server)}

	body := []byte(`{"topic":"python loops"}`)
	req := authedRequest("POST", "/ai/lesson", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.GenerateLesson(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp struct {
		HistoryID *int `json:"history_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HistoryID != nil {
		t.Errorf("history_id: got %v, want null", *resp.HistoryID)
	}
}

func TestAIHandler_GenerateLesson_Validation(t *testing.T) {
	h := &AIHandler{}
	long := make([]byte, MaxTopicLength+1)
	for i := range long {
		long[i] = 'x'
	}

	cases := []struct {
		name string
		body string
	}{
		{"missing topic", `{"difficulty":"beginner"}`},
		{"topic too long", `{"topic":"` + string(long) + `"}`},
		{"bad difficulty", `{"topic":"algebra","difficulty":"expert"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest("POST", "/ai/lesson", []byte(tc.body), &models.User{ID: 1})
			rr := httptest.NewRecorder()
			h.GenerateLesson(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
		})
	}
}

func TestAIHandler_GenerateQuiz(t *testing.T) {
	quizJSON := `{"questions":[{"question":"What is 2+2?","options":["3","4","5","6"],"correct_answer":"4","explanation":"Basic addition."}]}`
	server := completionServer(t, quizJSON)
	defer server.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO search_history`).
		WithArgs(1, "basic math", "intermediate", sqlmock.AnyArg(), "quiz").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content", "content_type", "created_at"}).
			AddRow(8, 1, "basic math", "intermediate", quizJSON, "quiz", time.Now()))

	h := &AIHandler{History: repo.NewHistoryRepo(db), AI: aiClientFor(server)}

	body := []byte(`{"topic":"basic math"}`)
	req := authedRequest("POST", "/ai/quiz", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.GenerateQuiz(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GenerateQuiz status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp struct {
		Questions []ai.Question `json:"questions"`
		HistoryID *int          `json:"history_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questions) != 1 || resp.Questions[0].CorrectAnswer != "4" {
		t.Errorf("unexpected questions: %+v", resp.Questions)
	}
	if resp.HistoryID == nil || *resp.HistoryID != 8 {
		t.Errorf("history_id: got %v, want 8", resp.HistoryID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAIHandler_GenerateQuiz_BadModelOutput(t *testing.T) {
	server := completionServer(t, `{"not_questions":[]}`)
	defer server.Close()

	h := &AIHandler{AI: aiClientFor(server)}

	body := []byte(`{"topic":"basic math"}`)
	req := authedRequest("POST", "/ai/quiz", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.GenerateQuiz(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Invalid quiz format" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
}

func TestAIHandler_GetFeedback(t *testing.T) {
	server := completionServer(t, "Close, but remember to carry the one.")
	defer server.Close()

	h := &AIHandler{AI: aiClientFor(server)}

	body := []byte(`{"answer":"41","correct_answer":"42"}`)
	req := authedRequest("POST", "/ai/feedback", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.GetFeedback(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetFeedback status: got %d, want 200", rr.Code)
	}
	var resp struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Feedback == "" {
		t.Error("expected feedback content")
	}
}

func TestAIHandler_SearchVideo_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	videos := youtube.NewClient(server.Client(), discardLogger(), server.URL, "test-key")
	h := &AIHandler{Videos: videos}

	body := []byte(`{"topic":"python loops"}`)
	req := authedRequest("POST", "/ai/video", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.SearchVideo(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestAIHandler_SearchVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":{"videoId":"abc123"},"snippet":{"title":"Loops explained","description":"A walkthrough"}}]}`))
	}))
	defer server.Close()

	videos := youtube.NewClient(server.Client(), discardLogger(), server.URL, "test-key")
	h := &AIHandler{Videos: videos}

	body := []byte(`{"topic":"python loops","difficulty":"beginner"}`)
	req := authedRequest("POST", "/ai/video", body, &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.SearchVideo(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("SearchVideo status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var video youtube.Video
	if err := json.NewDecoder(rr.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if video.VideoID != "abc123" || video.Title != "Loops explained" {
		t.Errorf("unexpected video: %+v", video)
	}
}

func TestAIHandler_TestAPIKey(t *testing.T) {
	server := completionServer(t, "Hello back!")
	defer server.Close()

	h := &AIHandler{AI: aiClientFor(server)}

	req := authedRequest("POST", "/ai/test-key", []byte(`{}`), &models.User{ID: 1})
	rr := httptest.NewRecorder()
	h.TestAPIKey(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("TestAPIKey status: got %d, want 200", rr.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status field: got %q, want success", resp.Status)
	}
}
