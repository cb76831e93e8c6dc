package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AbdullaK123/notes-api/internal/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "session"

var secret = []byte("0123456789abcdef0123456789abcdef")

func newTestHandler(t *testing.T) (*session.Store, http.Handler) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := session.NewStore(client, time.Hour)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(userID))
	})

	return store, Middleware(store, cookieName, secret)(next)
}

func request(cookieValue string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	return req
}

func TestMiddlewareAllowsValidSession(t *testing.T) {
	store, handler := newTestHandler(t)

	sid, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(session.EncodeCookie(sid, secret)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestMiddlewareRejectsMissingCookie(t *testing.T) {
	_, handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "Not Authenticated"}`, rec.Body.String())
}

func TestMiddlewareRejectsTamperedCookie(t *testing.T) {
	store, handler := newTestHandler(t)

	sid, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	// Valid session id, signature made with the wrong secret.
	forged := session.EncodeCookie(sid, []byte("another-secret-another-secret-00"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(forged))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsUnknownSession(t *testing.T) {
	_, handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(session.EncodeCookie("no-such-session", secret)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "Not Authenticated"}`, rec.Body.String())
}

func TestMiddlewareRejectsDestroyedSession(t *testing.T) {
	store, handler := newTestHandler(t)
	ctx := context.Background()

	sid, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	cookie := session.EncodeCookie(sid, secret)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(cookie))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.Destroy(ctx, sid))

	// Replaying the same cookie after logout must fail.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, request(cookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
