package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/gnosislabs/gnosis-api/internal/models"
)

// ==========================
// HistoryRepo
// ==========================
type HistoryRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// ==========================
// Create History Entry
// ==========================
func (r *HistoryRepo) Create(ctx context.Context, userID int, topic, difficulty, content, contentType string) (*models.SearchHistory, error) {
	query := `
		INSERT INTO search_history (user_id, topic, difficulty, content, content_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, topic, difficulty, content, content_type, created_at
	`

	h := &models.SearchHistory{}

	err := r.DB.QueryRowContext(ctx, query, userID, topic, difficulty, content, contentType).
		Scan(&h.ID, &h.UserID, &h.Topic, &h.Difficulty, &h.Content, &h.ContentType, &h.CreatedAt)

	if err != nil {
		return nil, err
	}

	return h, nil
}

// ==========================
// List By User (newest first; content omitted to keep list responses small)
// ==========================
func (r *HistoryRepo) ListByUser(ctx context.Context, userID int) ([]models.SearchHistory, error) {
	query := `
		SELECT id, user_id, topic, difficulty, content_type, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.SearchHistory
	for rows.Next() {
		var h models.SearchHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.Topic, &h.Difficulty, &h.ContentType, &h.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, h)
	}

	return list, rows.Err()
}

// ==========================
// Get By ID (full row including content)
// ==========================
func (r *HistoryRepo) GetByID(ctx context.Context, id int) (*models.SearchHistory, error) {
	query := `
		SELECT id, user_id, topic, difficulty, content, content_type, created_at
		FROM search_history
		WHERE id = $1
	`

	h := &models.SearchHistory{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&h.ID, &h.UserID, &h.Topic, &h.Difficulty, &h.Content, &h.ContentType, &h.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return h, nil
}

// ==========================
// Delete (scoped to owner; reports whether a row was removed)
// ==========================
func (r *HistoryRepo) Delete(ctx context.Context, id, userID int) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM search_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// ==========================
// Clear For User
// ==========================
func (r *HistoryRepo) ClearForUser(ctx context.Context, userID int) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM search_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ==========================
// Delete Older Than (used by the retention job)
// ==========================
func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM search_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
