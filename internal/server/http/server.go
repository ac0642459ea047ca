package httpserver

import (
	"net/http"
	"time"

	"github.com/clipstream/clipstream/internal/token"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// Config holds transport-level settings.
type Config struct {
	// RefreshTTL bounds session cookie lifetime.
	RefreshTTL time.Duration
	// StoreTimeout caps every request (and with it every store call).
	StoreTimeout time.Duration
	// CORSOrigins lists allowed origins; cookies require explicit origins.
	CORSOrigins []string
	// LoginRateLimit caps login attempts per IP per minute.
	LoginRateLimit int
}

// Server wires services into HTTP handlers.
type Server struct {
	session    SessionAPI
	graph      GraphAPI
	tokens     *token.Service
	log        *zap.Logger
	refreshTTL time.Duration
	cfg        Config
}

// New constructs the HTTP server with injected services.
func New(session SessionAPI, graph GraphAPI, tokens *token.Service, log *zap.Logger, cfg Config) *Server {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 10 * time.Second
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}
	return &Server{
		session:    session,
		graph:      graph,
		tokens:     tokens,
		log:        log,
		refreshTTL: cfg.RefreshTTL,
		cfg:        cfg,
	}
}

// Routes assembles the chi router with the global middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	r.Use(StoreTimeout(s.cfg.StoreTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	auth := Authenticate(s.tokens)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.With(httprate.Limit(s.cfg.LoginRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
			Post("/login", s.handleLogin)
		r.Post("/refresh-token", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/logout", s.handleLogout)
			r.Post("/change-password", s.handleChangePassword)
			r.Get("/current-user", s.handleCurrentUser)
			r.Get("/channel/{username}", s.handleChannelProfile)
			r.Get("/watch-history", s.handleWatchHistory)
			r.Patch("/update-account", s.handleUpdateAccount)
			r.Patch("/update-avatar", s.handleUpdateAvatar)
			r.Patch("/update-cover-image", s.handleUpdateCover)
		})
	})

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(auth)
		r.Post("/subscribe", s.handleSubscribe)
	})

	return r
}
