package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/gridwatch/solarcast/internal/chart"
	"github.com/gridwatch/solarcast/internal/forecast"
	"github.com/gridwatch/solarcast/internal/solcast"
	"github.com/gridwatch/solarcast/internal/store"
	"github.com/gridwatch/solarcast/pkg/metrics"
)

// metricsNamespace prefixes all Prometheus metric names.
const metricsNamespace = "solarcast"

// Server represents the solarcast HTTP server.
type Server struct {
	logger     *slog.Logger
	db         *gorm.DB
	httpServer *http.Server
	config     *ServerConfig
}

// ServerConfig holds the configuration for the Server.
type ServerConfig struct {
	Logger *slog.Logger

	// HTTP server configuration
	HTTPPort int

	// Database configuration
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPort     int

	// Solcast API configuration. SolcastAPIKey is the system-wide default
	// credential; a location's own key takes precedence when present.
	SolcastBaseURL string
	SolcastAPIKey  string
}

// NewServer creates a new Server instance.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.HTTPPort <= 0 {
		return nil, errors.New("HTTP port must be positive")
	}

	if cfg.DBHost == "" {
		return nil, errors.New("database host cannot be empty")
	}

	if cfg.DBPort <= 0 {
		return nil, errors.New("database port must be positive")
	}

	if cfg.DBUser == "" {
		return nil, errors.New("database user cannot be empty")
	}

	if cfg.DBName == "" {
		return nil, errors.New("database name cannot be empty")
	}

	return &Server{
		logger: cfg.Logger,
		config: cfg,
	}, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting solarcast server")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Initialize database
	db, err := store.NewDB(&store.DBConfig{
		Logger:   s.logger,
		Host:     s.config.DBHost,
		Port:     s.config.DBPort,
		User:     s.config.DBUser,
		Password: s.config.DBPassword,
		DBName:   s.config.DBName,
		SSLMode:  s.config.DBSSLMode,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	s.db = db

	handler, err := s.buildHandler(db)
	if err != nil {
		return err
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)

	// Start HTTP server in goroutine
	httpErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(httpErr)
	}()

	s.logger.Info("solarcast server started successfully")

	// Wait for shutdown signal or HTTP error
	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled")
	case err := <-httpErr:
		if err != nil {
			s.logger.Error("HTTP server error", "error", err)
			cancel()
			return err
		}
	}

	// Shutdown
	return s.Shutdown()
}

// buildHandler wires the stores, fetcher, refresher, and renderer behind the
// route table.
func (s *Server) buildHandler(db *gorm.DB) (http.Handler, error) {
	locations, err := store.NewLocationStore(db, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize location store: %w", err)
	}

	forecasts, err := store.NewForecastStore(db, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize forecast store: %w", err)
	}

	refreshMetrics := metrics.NewRefreshMetrics(metricsNamespace)
	webMetrics := metrics.NewWebMetrics(metricsNamespace)

	fetcher, err := solcast.NewClient(&solcast.ClientConfig{
		Logger:  s.logger,
		BaseURL: s.config.SolcastBaseURL,
		Metrics: refreshMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize solcast client: %w", err)
	}

	refresher, err := forecast.NewRefresher(&forecast.RefresherConfig{
		Logger:        s.logger,
		Locations:     locations,
		Forecasts:     forecasts,
		Fetcher:       fetcher,
		Metrics:       refreshMetrics,
		DefaultAPIKey: s.config.SolcastAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize refresher: %w", err)
	}

	renderer, err := chart.NewRenderer(s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chart renderer: %w", err)
	}

	handler, err := NewRouter(&RouterConfig{
		Logger:    s.logger,
		Locations: locations,
		Refresher: refresher,
		Renderer:  renderer,
		Metrics:   webMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}
	return handler, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down solarcast server")

	var shutdownErr error

	// Shutdown HTTP server
	if s.httpServer != nil {
		s.logger.Info("stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown HTTP server", "error", err)
			shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		s.logger.Info("HTTP server stopped")
	}

	// Close database
	if s.db != nil {
		if err := store.CloseDB(s.db, s.logger); err != nil {
			s.logger.Error("failed to close database", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; database close error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("database close error: %w", err)
			}
		}
	}

	if shutdownErr != nil {
		s.logger.Error("solarcast server shutdown completed with errors", "error", shutdownErr)
		return shutdownErr
	}

	s.logger.Info("solarcast server shutdown completed successfully")
	return nil
}
