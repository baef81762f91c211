package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/gnosislabs/gnosis-api/internal/repo"
)

func TestHistoryHandler_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, topic, difficulty, content_type, created_at`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content_type", "created_at"}).
			AddRow(2, 1, "algebra", "beginner", "quiz", now).
			AddRow(1, 1, "python loops", "beginner", "lesson", now.Add(-time.Hour)))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := httptest.NewRequest("GET", "/learning/history", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("List status: got %d, want 200", rr.Code)
	}
	var resp struct {
		History []models.SearchHistory `json:"history"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.History) != 2 || resp.History[0].Topic != "algebra" {
		t.Errorf("unexpected history: %+v", resp.History)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestHistoryHandler_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, topic, difficulty, content, content_type, created_at`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content", "content_type", "created_at"}).
			AddRow(5, 1, "algebra", "beginner", "full lesson text", "lesson", time.Now()))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := requestWithChiURLParams("GET", "/learning/history/5", nil, map[string]string{"id": "5"})
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Get status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var entry models.SearchHistory
	if err := json.NewDecoder(rr.Body).Decode(&entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.ID != 5 || entry.Content != "full lesson text" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestHistoryHandler_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, topic, difficulty, content, content_type, created_at`).
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content", "content_type", "created_at"}))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := requestWithChiURLParams("GET", "/learning/history/999", nil, map[string]string{"id": "999"})
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// An entry owned by another user is visible in the table but not to this
// caller.
func TestHistoryHandler_Get_OtherOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, topic, difficulty, content, content_type, created_at`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "topic", "difficulty", "content", "content_type", "created_at"}).
			AddRow(5, 2, "algebra", "beginner", "someone else's lesson", "lesson", time.Now()))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := requestWithChiURLParams("GET", "/learning/history/5", nil, map[string]string{"id": "5"})
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM search_history WHERE id = \$1 AND user_id = \$2`).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := requestWithChiURLParams("DELETE", "/learning/history/5", nil, map[string]string{"id": "5"})
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Delete status: got %d, want 200", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Deleting another user's entry (or a missing one) reports not found.
func TestHistoryHandler_Delete_NotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM search_history WHERE id = \$1 AND user_id = \$2`).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := requestWithChiURLParams("DELETE", "/learning/history/5", nil, map[string]string{"id": "5"})
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestHistoryHandler_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM search_history WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))

	h := &HistoryHandler{History: repo.NewHistoryRepo(db)}

	req := httptest.NewRequest("DELETE", "/learning/history", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1}))
	rr := httptest.NewRecorder()
	h.Clear(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Clear status: got %d, want 200", rr.Code)
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 3 {
		t.Errorf("deleted: got %d, want 3", resp.Deleted)
	}
}
