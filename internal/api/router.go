package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/viken-labs/ressurstorg/internal/api/auth"
	"github.com/viken-labs/ressurstorg/internal/api/companies"
	"github.com/viken-labs/ressurstorg/internal/api/inbox"
	"github.com/viken-labs/ressurstorg/internal/api/middleware"
	"github.com/viken-labs/ressurstorg/internal/api/resources"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	jwtService := auth.NewJWTService(s.config.JWTSecret, s.config.AccessTokenTTL)
	lockoutTracker := auth.NewLockoutTracker(s.config.LockoutThreshold, s.config.LockoutDuration)

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)
	companyLimiter := middleware.NewRateLimiter(s.config.RateLimitPerCompany)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (mostly public)
		r.Route("/auth", func(r chi.Router) {
			authHandler := auth.NewHandler(
				s.storage,
				jwtService,
				lockoutTracker,
				s.config.RefreshTokenTTL,
			)

			// Public routes with IP rate limiting
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(ipLimiter))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(jwtService))
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Company account routes (protected)
		r.Route("/companies", func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))
			r.Use(middleware.RateLimitByCompany(companyLimiter))

			companyHandler := companies.NewHandler(s.storage)

			r.Get("/me", companyHandler.Me)
			r.Put("/me", companyHandler.UpdateMe)
			r.Put("/me/password", companyHandler.ChangePassword)
		})

		// Marketplace listing routes (protected)
		r.Route("/resources", func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))
			r.Use(middleware.RateLimitByCompany(companyLimiter))

			resourceHandler := resources.NewHandler(s.storage, s.manager)

			r.Get("/", resourceHandler.List)
			r.Post("/", resourceHandler.Create)
			r.Get("/mine", resourceHandler.Mine)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", resourceHandler.Get)
				r.Post("/accept", resourceHandler.Accept)
				r.Post("/taken", resourceHandler.MarkTaken)
				r.Delete("/", resourceHandler.Delete)
			})
		})

		// Negotiation thread routes (protected)
		r.Route("/inbox", func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))
			r.Use(middleware.RateLimitByCompany(companyLimiter))

			inboxHandler := inbox.NewHandler(s.manager, s.config.StreamMaxDuration)

			r.Get("/", inboxHandler.List)
			r.Post("/threads", inboxHandler.Start)
			r.Get("/threads/{threadID}", inboxHandler.GetThread)
			r.Post("/threads/{threadID}/reply", inboxHandler.Reply)
			r.Post("/threads/{threadID}/share-contact", inboxHandler.ShareContact)
			r.Get("/events", inboxHandler.Events)
		})
	})

	// Health checks (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/ready", s.healthHandler.Ready)

	return r
}
