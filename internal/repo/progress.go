package repo

import (
	"context"
	"database/sql"

	"github.com/gnosislabs/gnosis-api/internal/models"
)

// ==========================
// ProgressRepo
// ==========================
type ProgressRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewProgressRepo(db *sql.DB) *ProgressRepo {
	return &ProgressRepo{DB: db}
}

// ==========================
// Create Progress Entry
// ==========================
func (r *ProgressRepo) Create(ctx context.Context, userID int, topic string, score float64, feedback string) (*models.Progress, error) {
	query := `
		INSERT INTO progress (user_id, topic, score, feedback)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, topic, score, COALESCE(feedback, ''), completed_at
	`

	p := &models.Progress{}

	err := r.DB.QueryRowContext(ctx, query, userID, topic, score, feedback).
		Scan(&p.ID, &p.UserID, &p.Topic, &p.Score, &p.Feedback, &p.CompletedAt)

	if err != nil {
		return nil, err
	}

	return p, nil
}

// ==========================
// List By User
// ==========================
func (r *ProgressRepo) ListByUser(ctx context.Context, userID int) ([]models.Progress, error) {
	query := `
		SELECT id, user_id, topic, score, COALESCE(feedback, ''), completed_at
		FROM progress
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Progress
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(&p.ID, &p.UserID, &p.Topic, &p.Score, &p.Feedback, &p.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}
