package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dirgate/internal/middleware"
)

// RouterConfig holds the middleware settings for the API router.
type RouterConfig struct {
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// NewRouter assembles the chi router: public login and health endpoints, and
// the session-authenticated API surface. The user loader backs per-request
// account re-reads in the auth middleware.
func NewRouter(h *Handlers, users middleware.UserLoader, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/v1/auth/login", h.handleLogin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionAuth(h.Auth, users))

		r.Post("/auth/logout", h.handleLogout)
		r.Get("/auth/me", h.handleMe)
		r.Get("/auth/permissions", h.handlePermissions)
		r.Get("/auth/authorize", h.handleAuthorize)
		r.Post("/auth/password", h.handleChangePassword)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.handleCreateUser)
			r.Get("/", h.handleListUsers)
			r.Get("/{id}", h.handleGetUser)
			r.Get("/{id}/groups", h.handleUserGroups)
			r.Patch("/{id}", h.handleUpdateUser)
			r.Delete("/{id}", h.handleDeleteUser)
			r.Post("/{id}/password-reset", h.handleResetPassword)
			r.Post("/{id}/unlock", h.handleUnlockUser)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.handleCreateGroup)
			r.Get("/", h.handleListGroups)
			r.Get("/{id}", h.handleGetGroup)
			r.Patch("/{id}", h.handleUpdateGroup)
			r.Delete("/{id}", h.handleDeleteGroup)
			r.Get("/{id}/members", h.handleListMembers)
			r.Put("/{id}/members/{userID}", h.handleAddMember)
			r.Delete("/{id}/members/{userID}", h.handleRemoveMember)
			r.Post("/{id}/capabilities", h.handleGrantCapability)
			r.Delete("/{id}/capabilities/{capability}", h.handleRevokeCapability)
		})

		r.Route("/computers", func(r chi.Router) {
			r.Post("/", h.handleCreateComputer)
			r.Get("/", h.handleListComputers)
			r.Get("/{id}", h.handleGetComputer)
			r.Patch("/{id}", h.handleUpdateComputer)
			r.Delete("/{id}", h.handleDeleteComputer)
			r.Post("/{id}/status", h.handleComputerStatus)
		})

		r.Route("/ous", func(r chi.Router) {
			r.Post("/", h.handleCreateOU)
			r.Get("/", h.handleListOUs)
			r.Get("/{id}", h.handleGetOU)
			r.Get("/{id}/children", h.handleOUChildren)
			r.Get("/{id}/path", h.handleOUPath)
			r.Patch("/{id}", h.handleUpdateOU)
			r.Delete("/{id}", h.handleDeleteOU)
		})

		r.Get("/audit", h.handleListAudit)
		r.Get("/stats", h.handleStats)
	})

	return r
}
