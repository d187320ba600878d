package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"nightfall/internal/config"
	localMiddleware "nightfall/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	// Set up router
	r := chi.NewRouter()

	// Chi's built-in middleware (conditionally applied)
	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	requestTimeout := cfg.Server.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	// Our custom middleware
	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	// Rate limiting (conditionally applied)
	if !opts.DisableRateLimiting {
		rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	// Apply custom middleware if provided
	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	r.Route("/api/rooms", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/", h.CreateRoom)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetRoom)
			r.Delete("/", h.CloseRoom)
			r.Post("/join", h.JoinRoom)
			r.Post("/bots", h.AddBot)
			r.Put("/distribution", h.SetDistribution)
			r.Post("/distribution/template", h.ApplyTemplate)
			r.Post("/start", h.StartGame)
			r.Post("/action", h.SubmitAction)
			r.Post("/skip", h.ToggleSkip)
			r.Post("/messages", h.PostMessage)
			r.Post("/rematch", h.Rematch)
		})
	})
	r.Get("/room/{id}/invite.png", h.Invite)

	// Long-lived streams, outside the request timeout
	r.Get("/sse/rooms/{id}", ValidateSSERequest(h.StreamRoom))

	// Health check endpoints (no auth required)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.manager == nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}