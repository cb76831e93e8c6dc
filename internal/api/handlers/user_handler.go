package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AbdullaK123/notes-api/internal/auth"
	"github.com/AbdullaK123/notes-api/internal/services"
	"github.com/AbdullaK123/notes-api/internal/session"
	"github.com/rs/zerolog/log"
)

// CookieSettings controls how the session cookie is issued.
type CookieSettings struct {
	Name     string
	Secret   []byte
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// UserHandler handles registration, login, logout, and the current-user
// endpoint.
type UserHandler struct {
	service  services.UserServiceProvider
	sessions *session.Store
	cookie   CookieSettings
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, sessions *session.Store, cookie CookieSettings) *UserHandler {
	return &UserHandler{service: service, sessions: sessions, cookie: cookie}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
			respondMessage(w, http.StatusConflict, "User already exists")
		case errors.Is(err, services.ErrInvalidEmail):
			respondMessage(w, http.StatusBadRequest, "Invalid email")
		case errors.Is(err, services.ErrInvalidPassword):
			respondMessage(w, http.StatusBadRequest, "Invalid password")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
			respondMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and session creation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Uniform body for unknown email and wrong password.
			respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sid, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, sid, int(h.cookie.MaxAge.Seconds()))
	respondJSON(w, http.StatusOK, user)
}

// Logout destroys the presented session. Other sessions of the same user
// stay alive: each device logs out on its own.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := auth.SessionID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	if err := h.sessions.Destroy(r.Context(), sid); err != nil {
		log.Error().Err(err).Msg("Failed to destroy session")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, "", -1)
	respondMessage(w, http.StatusOK, "Successfully logged out")
}

// GetMe returns the authenticated user's public profile. A session whose
// user no longer exists is destroyed on the spot and answered 401.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			if sid, ok := auth.SessionID(r.Context()); ok {
				if derr := h.sessions.Destroy(r.Context(), sid); derr != nil {
					log.Error().Err(derr).Msg("Failed to destroy stale session")
				}
			}
			h.setSessionCookie(w, "", -1)
			respondMessage(w, http.StatusUnauthorized, "Session invalid")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load current user")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, sid string, maxAge int) {
	value := ""
	if sid != "" {
		value = session.EncodeCookie(sid, h.cookie.Secret)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}
