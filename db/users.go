package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lista-de-compras/shopping-list-services/models"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

const uniqueViolation = "23505"

// CreateUser inserts a new user row with the already-hashed credential.
func (db *ShoppingDB) CreateUser(req *models.User) (*models.User, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	userID := uuid.New()
	now := time.Now().UTC()

	err = db.execQuery(tx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, req.Name, req.Email, req.PasswordHash, now, now)
	if err != nil {
		tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := db.CommitTransaction(tx); err != nil {
		return nil, err
	}

	user := *req
	user.ID = userID
	user.CreatedAt = now
	user.UpdatedAt = now

	return &user, nil
}

// GetUserByEmail retrieves a user by their login email.
func (db *ShoppingDB) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, reset_password_token, reset_password_sent_at, created_at, updated_at
		FROM users WHERE email = $1`
	return db.scanUser(db.DB.QueryRow(query, email))
}

// GetUserByID retrieves a user by their identifier.
func (db *ShoppingDB) GetUserByID(userID uuid.UUID) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, reset_password_token, reset_password_sent_at, created_at, updated_at
		FROM users WHERE id = $1`
	return db.scanUser(db.DB.QueryRow(query, userID))
}

// GetUserByResetToken retrieves the user holding an outstanding reset token.
func (db *ShoppingDB) GetUserByResetToken(token string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, reset_password_token, reset_password_sent_at, created_at, updated_at
		FROM users WHERE reset_password_token = $1`
	return db.scanUser(db.DB.QueryRow(query, token))
}

// SetResetToken stores a freshly issued password reset token on the user row.
func (db *ShoppingDB) SetResetToken(userID uuid.UUID, token string, sentAt time.Time) error {
	_, err := db.DB.Exec(`
		UPDATE users SET reset_password_token = $1, reset_password_sent_at = $2, updated_at = $3
		WHERE id = $4`,
		token, sentAt, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}
	return nil
}

// UpdatePassword swaps the credential and invalidates any outstanding reset
// token in the same statement.
func (db *ShoppingDB) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	_, err := db.DB.Exec(`
		UPDATE users SET password_hash = $1, reset_password_token = NULL, reset_password_sent_at = NULL, updated_at = $2
		WHERE id = $3`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

func (db *ShoppingDB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.ResetPasswordToken,
		&u.ResetPasswordSentAt,
		&u.CreatedAt,
		&u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}
