package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gnosislabs/gnosis-api/internal/auth"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/lib/pq"
)

// Duplicate-key errors surfaced by Create. The users table owns the uniqueness
// guarantee; concurrent registrations race at the constraint, not in Go code.
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User (hashes the raw password; the raw password is not stored)
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, username, COALESCE(email, ''), created_at
	`

	user := &models.User{PasswordHash: hash}

	err = r.DB.QueryRowContext(ctx, query, username, email, hash).
		Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)

	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	return user, nil
}

// mapUniqueViolation translates a pq unique-violation (23505) into the
// duplicate error matching the violated constraint.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		default:
			return ErrDuplicateUsername
		}
	}
	return err
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, created_at, last_login
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.LastLogin)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, created_at, last_login
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.LastLogin)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Record Login (sets last_login to now; the only mutation besides Create)
// ==========================
func (r *UserRepo) RecordLogin(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
	return err
}

// ==========================
// Username / Email Existence (for availability checks)
// ==========================
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).
		Scan(&exists)
	return exists, err
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).
		Scan(&exists)
	return exists, err
}
