package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/AbdullaK123/notes-api/internal/models"
	"github.com/AbdullaK123/notes-api/internal/password"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// passwordSymbols is the punctuation set the password policy accepts.
const passwordSymbols = "!@#$%^&*"

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, plaintext string) (models.User, error)
	Authenticate(ctx context.Context, email, plaintext string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides registration and login business logic.
type UserService struct {
	db     *sql.DB
	hasher *password.Hasher
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, hasher *password.Hasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// Register creates a new account. The duplicate check runs before the
// format checks, so a taken email answers Conflict regardless of how the
// rest of the request looks. The unique indexes on users remain the final
// arbiter when two registrations race past the pre-check.
func (s *UserService) Register(ctx context.Context, username, email, plaintext string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to check existing email: %w", err)
	}
	if exists > 0 {
		return models.User{}, ErrEmailTaken
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to check existing username: %w", err)
	}
	if exists > 0 {
		return models.User{}, ErrUsernameTaken
	}

	if !validEmail(email) {
		return models.User{}, ErrInvalidEmail
	}
	if !validPassword(plaintext) {
		return models.User{}, ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, hash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.email"):
			return models.User{}, ErrEmailTaken
		case isUniqueViolation(err, "users.username"):
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a user's credentials. An unknown email and a wrong
// password return the same ErrInvalidCredentials so responses cannot be
// used to enumerate accounts.
func (s *UserService) Authenticate(ctx context.Context, email, plaintext string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	var hash string
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &hash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(plaintext, hash)
	if err != nil {
		// A hash we cannot parse means verification failed, but it also
		// means the stored record is damaged. Log it, tell the caller
		// nothing beyond the uniform failure.
		log.Error().Err(err).Str("user_id", user.ID).Msg("Stored password hash is malformed")
		return models.User{}, ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at, updated_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validPassword enforces the policy: at least 8 characters with an upper,
// a lower, a digit, and a symbol from passwordSymbols.
func validPassword(plaintext string) bool {
	if len(plaintext) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column. The sqlite driver exposes constraint details only in
// the error text, e.g. "UNIQUE constraint failed: users.email".
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
