package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"simvex/internal/auth/models"
	"simvex/internal/common/storage"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ============================================================
// User Repository
// ============================================================

type Repository struct {
	db *storage.DB
}

func New(db *storage.DB) *Repository {
	return &Repository{db: db}
}

// Create hashes the password and stores a new user.
func (r *Repository) Create(ctx context.Context, email, password, username, studentID string) (*models.User, error) {
	email = normalizeEmail(email)
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		StudentID:    studentID,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
        INSERT INTO users (id, email, username, student_id, password_hash, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `), u.ID, u.Email, u.Username, u.StudentID, u.PasswordHash, u.CreatedAt)
	if err != nil {
		// a concurrent signup can still hit the unique index
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user whose email and password match.
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", normalizeEmail(email))
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *Repository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
        SELECT id, email, username, student_id, password_hash, created_at
        FROM users
        WHERE `+column+` = ?
    `), value)

	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.StudentID, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
