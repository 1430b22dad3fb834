// Package server exposes rentals over HTTP: a JSON API, Prometheus metrics
// and the static front-end with its contract artifacts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/market"
	"github.com/bitfsorg/estateshare-go/metrics"
	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/rental"
)

// contractArtifact is the compiled contract served at its own path for the
// front-end.
const contractArtifact = "RealEstate.json"

// Config controls the listener and the static file roots. Empty directories
// disable the corresponding routes.
type Config struct {
	Addr         string
	StaticDir    string
	ContractsDir string

	// Decimals is the number of fractional digits used for display amounts.
	Decimals int32

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the rental API.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	cfg        Config

	rentals  market.RentalCapability
	store    rental.Store
	contract network.ContractReader
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Server. rentals carries out POST /api/rentals, store backs
// the tenant view and contract prices quotes.
func New(cfg Config, rentals market.RentalCapability, store rental.Store, contract network.ContractReader, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Rentals wait on one ledger round trip per shareholder.
		cfg.WriteTimeout = 2 * time.Minute
	}

	s := &Server{
		router:   mux.NewRouter(),
		cfg:      cfg,
		rentals:  rentals,
		store:    store,
		contract: contract,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(withRequestID, s.recoverPanics, s.observe)

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rentals", s.rentProperty).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}", s.rentalDetails).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/quote", s.quote).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{address}/rentals", s.tenantRentals).Methods(http.MethodGet)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, ErrorCodeNotFound, "endpoint not found")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})

	if s.cfg.ContractsDir != "" {
		contracts := http.FileServer(http.Dir(s.cfg.ContractsDir))
		s.router.PathPrefix("/contracts/").Handler(http.StripPrefix("/contracts/", contracts))
		s.router.HandleFunc("/"+contractArtifact, func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.cfg.ContractsDir, contractArtifact))
		}).Methods(http.MethodGet)
	}
	if s.cfg.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
