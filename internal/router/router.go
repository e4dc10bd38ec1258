// Package router sets up all HTTP routes and middleware chains for the
// CardPress API. It organizes routes into public and authenticated
// groups with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cardpress/internal/handlers"
	"cardpress/internal/middleware"
	"cardpress/internal/session"
	"cardpress/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, limiter *middleware.RateLimiter, secureCookies bool,
	auth *handlers.Auth, designer *handlers.Designer, teams *handlers.Teams,
	leadForms *handlers.LeadForms, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", public.Health)

	// Static assets (social icons) from the embedded FS.
	staticRoot, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))))

	// Public card pages — what a printed QR code points at.
	r.Get("/c/{slug}", public.CardPage)
	r.Get("/c/{slug}/qr.png", public.CardImage)

	// Anonymous lead form submission, reached from card pages.
	// Rate-limited: it is unauthenticated and spam-prone.
	r.With(limiter.Middleware).Post("/api/lead-forms/{id}/submit", leadForms.Submit)

	// API routes.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))

		// Auth endpoints — accessible without a session. Credential
		// routes sit behind the rate limiter.
		r.With(limiter.Middleware).Post("/auth/register", auth.Register)
		r.With(limiter.Middleware).Post("/auth/login", auth.Login)
		r.Post("/auth/logout", auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/auth/2fa/setup", auth.TwoFASetup)
			r.With(limiter.Middleware).Post("/auth/2fa/verify", auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/auth/me", auth.Me)

			// QR designer
			r.Route("/qr-designer", func(r chi.Router) {
				r.Post("/savetobucket", designer.SaveToBucket)
				r.Get("/geticons", designer.GetIcons)
				r.Post("/edit", designer.Edit)
				r.Get("/list", designer.List)
				r.Delete("/{id}", designer.Delete)
			})

			// Teams
			r.Route("/teams", func(r chi.Router) {
				r.Get("/", teams.List)
				r.Post("/", teams.Create)
				r.Put("/{id}", teams.Rename)
				r.Delete("/{id}", teams.Delete)
				r.Get("/{id}/members", teams.Members)
				r.Post("/{id}/members", teams.AddMember)
				r.Delete("/{id}/members/{userID}", teams.RemoveMember)
			})

			// Lead forms
			r.Route("/lead-forms", func(r chi.Router) {
				r.Get("/", leadForms.List)
				r.Post("/", leadForms.Create)
				r.Get("/{id}", leadForms.Get)
				r.Put("/{id}", leadForms.Update)
				r.Delete("/{id}", leadForms.Delete)
				r.Get("/{id}/submissions", leadForms.Submissions)
			})
		})
	})

	return r
}
