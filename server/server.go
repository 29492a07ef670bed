package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-yoga-server/auth"
	"github.com/jrsteele09/go-yoga-server/internal/config"
	"github.com/jrsteele09/go-yoga-server/roster"
	"github.com/jrsteele09/go-yoga-server/sessions"
	"github.com/jrsteele09/go-yoga-server/teachers"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/rs/zerolog/log"
)

// Repos holds the entity stores the HTTP handlers read and write directly
type Repos struct {
	Users    users.Repo
	Teachers teachers.Repo
	Sessions sessions.Repo
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	roster *roster.Manager
	repos  Repos
}

func New(cfg config.Config, repos Repos, authService *auth.Service, rosterManager *roster.Manager) (*Server, error) {
	if repos.Users == nil || repos.Teachers == nil || repos.Sessions == nil {
		return nil, fmt.Errorf("[Server New] users, teachers and sessions repos are required")
	}
	if authService == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if rosterManager == nil {
		return nil, fmt.Errorf("[Server New] roster manager is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		repos:  repos,
		auth:   authService,
		roster: rosterManager,
	}
	s.env = cfg.GetEnv()

	if cfg.GetSeedData() {
		if err := s.InitialiseSystem(context.Background()); err != nil {
			return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colorMethod(method), path)
}
