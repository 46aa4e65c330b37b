package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/middleware"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

// Options holds the collaborators a Server is built from. Only Config and
// Events are required.
type Options struct {
	Config       *config.AuditConfig
	Events       events.Raiser
	Audit        *audit.Router
	HealthStore  store.HealthStore
	EntriesStore store.EntriesStore
	Gatherer     prometheus.Gatherer
	Logger       *zap.Logger
	AccessLog    io.Writer
}

type Server struct {
	Config             *config.AuditConfig
	Router             *mux.Router
	Events             events.Raiser
	Audit              *audit.Router
	HealthStore        store.HealthStore
	EntriesStore       store.EntriesStore
	Gatherer           prometheus.Gatherer
	IdentityMiddleware *middleware.IdentityAuthenticator
	Logger             *zap.Logger
	srv                *http.Server
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(accessLog, router),
		Addr:         opts.Config.ListenAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config:             opts.Config,
		Router:             router,
		Events:             opts.Events,
		Audit:              opts.Audit,
		HealthStore:        opts.HealthStore,
		EntriesStore:       opts.EntriesStore,
		Gatherer:           gatherer,
		IdentityMiddleware: middleware.NewIdentityAuthenticator([]byte(opts.Config.JWTSecret), opts.Config.IsTrustedProxy),
		Logger:             logger,
		srv:                srv,
	}
}

// Handler returns the root handler, access logging included
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.Logger.Info("listening", zap.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
