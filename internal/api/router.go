package api

import (
	"github.com/AbdullaK123/notes-api/internal/api/handlers"
	"github.com/AbdullaK123/notes-api/internal/auth"
	"github.com/AbdullaK123/notes-api/internal/config"
	"github.com/AbdullaK123/notes-api/internal/services"
	"github.com/AbdullaK123/notes-api/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router. Registration and
// login are the only routes outside the auth gate.
func NewRouter(cfg *config.Config, sessions *session.Store, userService services.UserServiceProvider, noteService services.NoteServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS with credentials so the session cookie travels cross-origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(userService, sessions, handlers.CookieSettings{
		Name:     cfg.SessionCookieName,
		Secret:   cfg.SessionSecret,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
		MaxAge:   cfg.SessionTTL,
	})
	noteHandler := handlers.NewNoteHandler(noteService)

	requireAuth := auth.Middleware(sessions, cfg.SessionCookieName, cfg.SessionSecret)

	r.Route("/auth", func(r chi.Router) {
		// Public routes - never behind the gate
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", userHandler.Logout)
			r.Get("/me", userHandler.GetMe)
		})
	})

	r.Route("/notes", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", noteHandler.GetAll)
		r.Post("/", noteHandler.Create)
		r.Route("/{noteID}", func(r chi.Router) {
			r.Get("/", noteHandler.Get)
			r.Put("/", noteHandler.Update)
			r.Delete("/", noteHandler.Delete)
		})
	})

	return r
}
