package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNormalizesInput(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())

	user, err := svc.Register(context.Background(), "  al  ", "A@B.com", "Abcdef1!")
	require.NoError(t, err)

	assert.Equal(t, "al", user.Username)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	registerUser(t, svc, "al", "a@b.com")

	// Case differs; emails compare case-insensitively.
	_, err := svc.Register(ctx, "bob", "A@B.COM", "Abcdef1!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())

	registerUser(t, svc, "al", "a@b.com")

	_, err := svc.Register(context.Background(), "al", "c@d.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterDuplicateCheckPrecedesFormatChecks(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())

	registerUser(t, svc, "al", "a@b.com")

	// The email is taken and the password is bad; the conflict wins.
	_, err := svc.Register(context.Background(), "bob", "a@b.com", "weak")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "a@", "@b.com", "a b@c.com"} {
		_, err := svc.Register(ctx, "al", email, "Abcdef1!")
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	rejected := []string{
		"Ab1!",     // too short
		"short1!a", // no uppercase
		"SHORT1!A", // no lowercase
		"Abcdefg!", // no digit
		"Abcdefg1", // no symbol
		"Abcdef1?", // symbol outside the accepted set
	}
	for _, plaintext := range rejected {
		_, err := svc.Register(ctx, "al", "a@b.com", plaintext)
		assert.ErrorIs(t, err, ErrInvalidPassword, "password %q", plaintext)
	}

	_, err := svc.Register(ctx, "al", "a@b.com", "Abcdef1!")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	created := registerUser(t, svc, "al", "a@b.com")

	user, err := svc.Authenticate(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Email comparison is case-insensitive on login too.
	user, err = svc.Authenticate(ctx, "A@B.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	registerUser(t, svc, "al", "a@b.com")

	_, wrongPassword := svc.Authenticate(ctx, "a@b.com", "Wrong1!pw")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@b.com", "Abcdef1!")

	// Unknown user and bad password are indistinguishable.
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestAuthenticateMalformedStoredHash(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestHasher())
	ctx := context.Background()

	user := registerUser(t, svc, "al", "a@b.com")

	_, err := db.Exec("UPDATE users SET password_hash = 'garbage' WHERE id = ?", user.ID)
	require.NoError(t, err)

	// A damaged record fails verification, it does not surface an error class
	// of its own.
	_, err = svc.Authenticate(ctx, "a@b.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByID(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher())
	ctx := context.Background()

	created := registerUser(t, svc, "al", "a@b.com")

	user, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "al", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetUserByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterRaceFallsBackToConstraint(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestHasher())

	// Simulate a row that appeared after the pre-check would have passed:
	// insert directly, bypassing Register's duplicate check, then map the
	// constraint violation.
	registerUser(t, svc, "al", "a@b.com")
	_, err := db.Exec(
		"INSERT INTO users(id, username, email, password_hash, created_at, updated_at) VALUES('x', 'bob', 'a@b.com', 'h', '2024-01-01', '2024-01-01')")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err, "users.email"))
	assert.False(t, isUniqueViolation(err, "users.username"))
}
