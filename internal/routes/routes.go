package routes

import (
	"log/slog"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/handlers"
	"github.com/BradenHooton/portfolio/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Contact       *handlers.ContactHandler
	LoginAttempts *handlers.LoginAttemptHandler
	Projects      *handlers.ProjectHandler
	Auth          *handlers.AuthHandler
	GitHub        *handlers.GitHubHandler
	Admin         *handlers.AdminHandler
}

// Guards are the access checks applied to route groups.
type Guards struct {
	Verifier   auth.Verifier
	Admins     auth.AdminAllowList
	CronSecret string
	AuthLimit  middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, g Guards, logger *slog.Logger) {
	authLimit := middleware.RateLimitByIP(g.AuthLimit)

	// Public routes
	router.Post("/contact", h.Contact.Submit)
	router.With(authLimit).Post("/log-login-attempt", h.LoginAttempts.LogAttempt)
	router.With(auth.RequireCronSecret(g.CronSecret)).Get("/cleanup-login-attempts", h.LoginAttempts.Cleanup)
	router.With(authLimit).Post("/auth/login", h.Auth.Login)
	router.Get("/github-contributions", h.GitHub.Contributions)
	router.Get("/projects", h.Projects.ListPublic)
	router.Get("/projects/{key}", h.Projects.GetPublic)

	// Admin routes
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(g.Verifier, g.Admins, logger))

		r.Get("/me", h.Admin.Me)
		r.Get("/dashboard", h.Admin.Dashboard)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Projects.List)
			r.Post("/", h.Projects.Create)
			r.Post("/bulk", h.Projects.Bulk)
			r.Get("/tech-stack", h.Projects.TechStack)
			r.Get("/{id}", h.Projects.Get)
			r.Put("/{id}", h.Projects.Update)
			r.Delete("/{id}", h.Projects.Delete)
			r.Post("/{id}/toggle-visibility", h.Projects.ToggleVisibility)
			r.Post("/{id}/image", h.Projects.UploadImage)
			r.Delete("/{id}/image", h.Projects.RemoveImage)
		})

		r.Route("/login-attempts", func(r chi.Router) {
			r.Get("/", h.LoginAttempts.List)
			r.Get("/stats", h.LoginAttempts.Stats)
			r.Post("/purge", h.LoginAttempts.Purge)
			r.Delete("/{id}", h.LoginAttempts.Delete)
		})
	})
}
