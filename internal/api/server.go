// Package api provides the HTTP REST API and WebSocket server for Spoolbridge.
//
// It exposes the webhook endpoint hub automations call, manual spool
// assignment operations, read-only printer and inventory views, the
// activity log, and a WebSocket gateway for live synchronization events.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
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

	"github.com/openspool/spoolbridge/internal/activity"
	"github.com/openspool/spoolbridge/internal/events"
	"github.com/openspool/spoolbridge/internal/hub"
	"github.com/openspool/spoolbridge/internal/infrastructure/config"
	"github.com/openspool/spoolbridge/internal/infrastructure/logging"
	"github.com/openspool/spoolbridge/internal/inventory"
	"github.com/openspool/spoolbridge/internal/syncengine"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SyncEngine is the subset of engine operations the HTTP surface
// dispatches to.
type SyncEngine interface {
	HandleSpoolUsage(ctx context.Context, event syncengine.UsageEvent) syncengine.Result
	HandleTrayChange(ctx context.Context, event syncengine.TrayChangeEvent) syncengine.Result
	HandlePrintWarning(ctx context.Context, event syncengine.PrintWarningEvent) syncengine.Result
	Assign(ctx context.Context, spoolID int, trayKey string) syncengine.Result
	Unassign(ctx context.Context, spoolID int) syncengine.Result
}

// HubClient provides printer telemetry for the read-only views.
type HubClient interface {
	States(ctx context.Context) ([]hub.Entity, error)
}

// InventoryClient provides spool listings for the read-only views.
type InventoryClient interface {
	ListSpools(ctx context.Context) ([]inventory.Spool, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Logger      *logging.Logger
	Engine      SyncEngine
	Hub         HubClient
	Inventory   InventoryClient
	Activity    activity.Repository
	Broadcaster *events.Broadcaster
	Version     string
}

// Server is the HTTP API server for Spoolbridge.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	engine      SyncEngine
	hubClient   HubClient
	inventory   InventoryClient
	activity    activity.Repository
	broadcaster *events.Broadcaster
	version     string
	server      *http.Server
	hub         *Hub
	subToken    string             // broadcaster subscription, released on Close()
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, engine, clients)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("sync engine is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("hub client is required")
	}
	if deps.Inventory == nil {
		return nil, fmt.Errorf("inventory client is required")
	}
	// Broadcaster is optional — without it the WebSocket gateway serves
	// connections but never pushes events.

	return &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger,
		engine:      deps.Engine,
		hubClient:   deps.Hub,
		inventory:   deps.Inventory,
		activity:    deps.Activity,
		broadcaster: deps.Broadcaster,
		version:     deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, subscribes to the
// event broadcaster for live WebSocket relay, and launches the HTTP
// listener in a background goroutine. The server can be stopped with
// Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Relay engine events to connected WebSocket clients.
	if s.broadcaster != nil {
		s.subToken = s.broadcaster.Subscribe(func(event events.SyncEvent) {
			s.hub.Broadcast(event)
		})
	}

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

	if s.broadcaster != nil && s.subToken != "" {
		s.broadcaster.Unsubscribe(s.subToken)
	}

	// Cancel background goroutines (WebSocket hub).
	if s.cancel != nil {
		s.cancel()
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
