package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/AbdullaK123/notes-api/internal/database"
	"github.com/AbdullaK123/notes-api/internal/models"
	"github.com/AbdullaK123/notes-api/internal/password"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New("file::memory:")
	require.NoError(t, err)
	// A pooled second connection would see its own empty :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestHasher() *password.Hasher {
	return password.NewHasher(password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func registerUser(t *testing.T, svc *UserService, username, email string) models.User {
	t.Helper()

	user, err := svc.Register(context.Background(), username, email, "Abcdef1!")
	require.NoError(t, err)
	return user
}
