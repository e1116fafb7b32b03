package alpaca

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/auditlog"
	"github.com/nexstar-alpaca/bridge/pkg/telemetry"
)

// Server owns the HTTP listener and UDP discovery responder for one Alpaca
// bridge process. The caller registers whatever telescopes it owns on the
// Registry before calling NewServer.
type Server struct {
	config    *Config
	logger    *zap.Logger
	registry  *Registry
	discovery *DiscoveryService
	httpSrv   *http.Server
	stopCh    chan struct{}

	// Telemetry and Audit are optional side channels forwarded onto the
	// Dispatcher this server builds; both nil-safe, set by the caller
	// before Start.
	Telemetry *telemetry.Publisher
	Audit     *auditlog.Log
}

// NewServer validates config and builds a Server ready to Start, serving
// every device already registered on registry.
func NewServer(config *Config, registry *Registry, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("alpaca: invalid configuration: %w", err)
	}
	return &Server{
		config:   config,
		logger:   logger.With(zap.String("component", "alpaca_server")),
		registry: registry,
		stopCh:   make(chan struct{}),
	}, nil
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(RecoveryMiddleware(s.logger))
	router.Use(LoggingMiddleware(s.logger))
	if s.config.CORS.Enabled {
		router.Use(CORSMiddleware(s.config.CORS))
	}
	router.Use(AuthMiddleware(s.config.Auth))

	dispatcher := NewDispatcher(s.registry, s.logger)
	dispatcher.Telemetry = s.Telemetry
	dispatcher.Audit = s.Audit
	dispatcher.RegisterRoutes(router.Group("/api/v1"))

	management := NewManagementAPI(s.registry, dispatcher.Counter())
	management.RegisterRoutes(router)

	RegisterSetupRoutes(router)

	return router
}

// Start runs the discovery responder and HTTP server; blocks until ctx is
// canceled or Stop is called, then shuts both down gracefully.
func (s *Server) Start(ctx context.Context) error {
	apiPort := extractPort(s.config.Server.ListenAddress)
	if apiPort == 0 {
		apiPort = DefaultAPIPort
	}

	s.discovery = NewDiscoveryService(s.config.Server.DiscoveryPort, apiPort, s.logger)
	if err := s.discovery.Start(); err != nil {
		return fmt.Errorf("alpaca: starting discovery: %w", err)
	}

	s.httpSrv = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      s.router(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("address", s.httpSrv.Addr))
		serverErrors <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("alpaca: http server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case <-s.stopCh:
		s.logger.Info("server stop requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during http shutdown", zap.Error(err))
	}
	s.discovery.Stop()

	s.logger.Info("server shutdown complete")
	return nil
}

// Stop requests a graceful shutdown of a running Start call.
func (s *Server) Stop() {
	close(s.stopCh)
}

// extractPort pulls the numeric port off the end of a "host:port" listen
// address, or 0 if it can't be parsed.
func extractPort(address string) int {
	idx := strings.LastIndex(address, ":")
	if idx == -1 {
		return 0
	}
	port, err := strconv.Atoi(address[idx+1:])
	if err != nil {
		return 0
	}
	return port
}
