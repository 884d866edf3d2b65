// Package server wires services, handlers and middleware into one
// http.Handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	chatapi "github.com/Vasu1712/scenyx-chat/internal/api/chat"
	"github.com/Vasu1712/scenyx-chat/internal/api/render"
	"github.com/Vasu1712/scenyx-chat/internal/api/schema"
	usersapi "github.com/Vasu1712/scenyx-chat/internal/api/users"
	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/chat"
	"github.com/Vasu1712/scenyx-chat/internal/config"
	"github.com/Vasu1712/scenyx-chat/internal/middleware"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/internal/users"
	apperrors "github.com/Vasu1712/scenyx-chat/pkg/errors"
)

// Version is reported in the API schema.
var Version = "dev"

type Server struct {
	cfg      *config.Config
	store    storage.Store
	registry *prometheus.Registry
	router   *mux.Router

	Users *users.Service
	Chat  *chat.Service
	Auth  *auth.Authenticator
}

// New builds the router. sessions holds the active token of every user.
func New(cfg *config.Config, store storage.Store, sessions auth.SessionStore) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		Users:    users.NewService(store),
		Chat:     chat.NewService(store, chat.NewMetrics(registry)),
	}
	s.Auth = auth.NewAuthenticator(auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), sessions, store)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, apperrors.ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, apperrors.NewAppError(http.StatusMethodNotAllowed, "method \""+r.Method+"\" not allowed"))
	})
	r.Use(middleware.NewHTTPMetrics(s.registry).Middleware)

	requireAuth := mux.MiddlewareFunc(middleware.RequireAuth(s.Auth))

	chatapi.RegisterRoutes(r, &chatapi.Handler{
		Service:     s.Chat,
		PageSize:    s.cfg.ChatPageSize,
		MaxPageSize: s.cfg.MaxPageSize,
	}, requireAuth)
	usersapi.RegisterRoutes(r, &usersapi.Handler{
		Users:       s.Users,
		Auth:        s.Auth,
		PageSize:    s.cfg.UserPageSize,
		MaxPageSize: s.cfg.MaxPageSize,
	}, requireAuth)
	schema.RegisterRoutes(r, schema.Build(Version))

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// Handler returns the router wrapped in the global middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.Logging(h)
	h = middleware.Recover(h)
	h = middleware.CORS(s.cfg.CORSOrigin)(h)
	return h
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	render.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
