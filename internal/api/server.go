// Package api provides the HTTP REST API for the Attic state archive.
//
// It exposes the import trigger and read accessors over the archived
// projections and state history. The server follows the same lifecycle
// pattern as the other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/atticlabs/attic/internal/entity"
	"github.com/atticlabs/attic/internal/importer"
	"github.com/atticlabs/attic/internal/infrastructure/config"
	"github.com/atticlabs/attic/internal/infrastructure/database"
	"github.com/atticlabs/attic/internal/infrastructure/influxdb"
	"github.com/atticlabs/attic/internal/infrastructure/logging"
	"github.com/atticlabs/attic/internal/infrastructure/mqtt"
	"github.com/atticlabs/attic/internal/inventory"
	"github.com/atticlabs/attic/internal/profiles"
	"github.com/atticlabs/attic/internal/services"
	"github.com/atticlabs/attic/internal/snapshot"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	DB        *database.DB
	Importer  *importer.Service
	Snapshots snapshot.Repository
	Inventory inventory.Repository
	Entities  entity.Repository
	History   entity.HistoryRepository
	Profiles  profiles.Repository
	Services  services.Repository
	MQTT      *mqtt.Client     // optional, health reporting only
	Influx    *influxdb.Client // optional, health reporting only
	Version   string
}

// Server is the HTTP API server for the Attic state archive.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	db        *database.DB
	importer  *importer.Service
	snapshots snapshot.Repository
	inventory inventory.Repository
	entities  entity.Repository
	history   entity.HistoryRepository
	profiles  profiles.Repository
	services  services.Repository
	mqtt      *mqtt.Client
	influx    *influxdb.Client
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, repositories, importer)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Importer == nil {
		return nil, fmt.Errorf("importer is required")
	}
	if deps.Snapshots == nil {
		return nil, fmt.Errorf("snapshot repository is required")
	}
	// MQTT and InfluxDB are optional; the archive reads and imports work without them

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		db:        deps.DB,
		importer:  deps.Importer,
		snapshots: deps.Snapshots,
		inventory: deps.Inventory,
		entities:  deps.Entities,
		history:   deps.History,
		profiles:  deps.Profiles,
		services:  deps.Services,
		mqtt:      deps.MQTT,
		influx:    deps.Influx,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
